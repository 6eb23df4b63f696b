// Package gis stores deployment records as rows of a hosted feature
// table, the admin dataset of the portal.
package gis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

type store struct {
	features gis.FeatureInterface
}

var _ record.Interface = (*store)(nil)

func New(features gis.FeatureInterface) record.Interface {
	return &store{features: features}
}

// Scalar columns carry what the admin table filters and displays on.
// The full record, derived state included, rides in the detail column
// as JSON so no schema change is needed when the record grows.
const (
	colObjectID     = "objectid"
	colDeploymentID = "uid"
	colProject      = "project"
	colCDEMGroups   = "cdemgroups"
	colWelfareNeeds = "welfareneeds"
	colStatus       = "status"
	colCreatedBy    = "created_user"
	colCreatedAt    = "created_date"
	colEditedBy     = "last_edited_user"
	colEditedAt     = "last_edited_date"
	colDetail       = "initialconfig"
)

func (s *store) List(ctx context.Context) ([]domain.DeploymentRecord, error) {
	rows, err := s.features.Query(ctx, "1=1", nil)
	if err != nil {
		return nil, fmt.Errorf("listing deployment records: %w", err)
	}
	records := make([]domain.DeploymentRecord, 0, len(rows))
	for _, row := range rows {
		r, err := fromAttributes(row.Attributes)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *store) Get(ctx context.Context, deploymentID string) (domain.DeploymentRecord, error) {
	where := fmt.Sprintf("%s = '%s'", colDeploymentID, escape(deploymentID))
	rows, err := s.features.Query(ctx, where, nil)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("getting deployment record %s: %w", deploymentID, err)
	}
	if len(rows) == 0 {
		return domain.DeploymentRecord{}, fmt.Errorf("%w: %s", record.ErrNotFound, deploymentID)
	}
	return fromAttributes(rows[0].Attributes)
}

func (s *store) Create(ctx context.Context, r *domain.DeploymentRecord) error {
	attrs, err := toAttributes(r, false)
	if err != nil {
		return err
	}
	oid, err := s.features.Add(ctx, attrs)
	if err != nil {
		return fmt.Errorf("creating deployment record %s: %w", r.DeploymentID, err)
	}
	r.ObjectID = oid
	return nil
}

func (s *store) Update(ctx context.Context, r *domain.DeploymentRecord) error {
	attrs, err := toAttributes(r, true)
	if err != nil {
		return err
	}
	if err := s.features.Update(ctx, attrs); err != nil {
		return fmt.Errorf("updating deployment record %s: %w", r.DeploymentID, err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, objectID int) error {
	if err := s.features.Delete(ctx, []int{objectID}); err != nil {
		return fmt.Errorf("deleting deployment record %d: %w", objectID, err)
	}
	return nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func toAttributes(r *domain.DeploymentRecord, withObjectID bool) (map[string]any, error) {
	detail, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding deployment record %s: %w", r.DeploymentID, err)
	}
	attrs := map[string]any{
		colDeploymentID: r.DeploymentID,
		colProject:      r.Project,
		colCDEMGroups:   r.ShortNames(),
		colWelfareNeeds: strings.Join(slices.Map(r.WelfareNeeds, domain.WelfareNeed.String), ", "),
		colStatus:       r.Status.String(),
		colCreatedBy:    r.CreatedBy,
		colCreatedAt:    toEpochMillis(r.CreatedAt),
		colEditedBy:     r.LastEditedBy,
		colEditedAt:     toEpochMillis(r.LastEditedAt),
		colDetail:       string(detail),
	}
	if withObjectID {
		attrs[colObjectID] = r.ObjectID
	}
	return attrs, nil
}

func fromAttributes(attrs map[string]any) (domain.DeploymentRecord, error) {
	detail, ok := attrs[colDetail].(string)
	if !ok || detail == "" {
		return domain.DeploymentRecord{}, fmt.Errorf("deployment record has no detail payload")
	}
	r := domain.DeploymentRecord{}
	if err := json.Unmarshal([]byte(detail), &r); err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("decoding deployment record: %w", err)
	}

	// Scalar columns win over the snapshot: status and edit metadata can
	// be corrected on the table directly.
	if oid, ok := asInt(attrs[colObjectID]); ok {
		r.ObjectID = oid
	}
	if raw, ok := attrs[colStatus].(string); ok && raw != "" {
		status, err := domain.AsDeploymentStatus(raw)
		if err != nil {
			return domain.DeploymentRecord{}, err
		}
		r.Status = status
	}
	if by, ok := attrs[colEditedBy].(string); ok && by != "" {
		r.LastEditedBy = by
	}
	if at, ok := asInt(attrs[colEditedAt]); ok {
		r.LastEditedAt = fromEpochMillis(int64(at))
	}
	return r, nil
}

// asInt tolerates json.Unmarshal turning numbers into float64.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toEpochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromEpochMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
