package slices

// map each element in sli.
//
// args:
//     - sli : slice of `T`s
//     - mapper : mapping function from T to R
// return:
//     slice of `R`s.
//     each element indexed `N` is given with `mapper(sli[N])` .
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// filter out elements not satisfying predicator.
func Filter[T any](sli []T, predicator func(v T) bool) []T {
	ret := []T{}
	for _, v := range sli {
		if predicator(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// find the first element satisfying predicator.
//
// return:
//     - T: the found element (zero value if none)
//     - bool: true when found
func First[T any](sli []T, predicator func(v T) bool) (T, bool) {
	for _, v := range sli {
		if predicator(v) {
			return v, true
		}
	}
	return *new(T), false
}

// convert slice to map.
//
// If keys given with getkey collide, a value coming latter takes over previous.
func ToMap[T any, K comparable](sli []T, getkey func(v T) K) map[K]T {
	m := map[K]T{}
	for _, v := range sli {
		m[getkey(v)] = v
	}
	return m
}

// remove duplicated elements, keeping the first occurence of each.
func Uniq[T comparable](sli []T) []T {
	seen := map[T]struct{}{}
	ret := make([]T, 0, len(sli))
	for _, v := range sli {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ret = append(ret, v)
	}
	return ret
}

// split sli into chunks of at most size elements, in order.
//
// Batch([1,2,3,4,5], 2) -> [[1,2],[3,4],[5]] .
//
// size < 1 is treated as 1.
func Batch[T any](sli []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	ret := [][]T{}
	for from := 0; from < len(sli); from += size {
		to := from + size
		if len(sli) < to {
			to = len(sli)
		}
		ret = append(ret, sli[from:to])
	}
	return ret
}

// true when sli has v as an element.
func Contains[T comparable](sli []T, v T) bool {
	_, ok := First(sli, func(e T) bool { return e == v })
	return ok
}

// Concat returns a new slice concatenating all of passed slices.
func Concat[T any](slis ...[]T) []T {
	ret := []T{}
	for _, s := range slis {
		ret = append(ret, s...)
	}
	return ret
}
