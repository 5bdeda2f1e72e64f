package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/license-atlas/pkg/models/domain"
	"github.com/de-tools/license-atlas/pkg/models/store"
	"github.com/de-tools/license-atlas/pkg/store/graph"
)

type Options struct {
	// TargetSKUs limits classification to these SKU ids; empty means all.
	TargetSKUs []string
	// IncludeAllStates keeps pending/error assignments and surfaces their
	// state and error fields. When false only active, error-free records
	// survive.
	IncludeAllStates bool
}

// Classifier resolves each of a user's raw license assignments to a
// ClassifiedAssignment: direct vs group source, human SKU name, optional
// effective-state filtering. Input order is preserved.
type Classifier struct {
	skuNames  map[string]string
	groups    *GroupNameCache
	targets   map[string]struct{}
	allStates bool
}

func NewClassifier(skuNames map[string]string, groups *GroupNameCache, opts Options) *Classifier {
	var targets map[string]struct{}
	if len(opts.TargetSKUs) > 0 {
		targets = make(map[string]struct{}, len(opts.TargetSKUs))
		for _, id := range opts.TargetSKUs {
			targets[id] = struct{}{}
		}
	}

	return &Classifier{
		skuNames:  skuNames,
		groups:    groups,
		targets:   targets,
		allStates: opts.IncludeAllStates,
	}
}

func (c *Classifier) Classify(ctx context.Context, records []store.LicenseAssignment) []domain.ClassifiedAssignment {
	classified := make([]domain.ClassifiedAssignment, 0, len(records))

	for _, record := range records {
		if c.targets != nil {
			if _, ok := c.targets[record.SKUID]; !ok {
				continue
			}
		}
		if !c.allStates && !isEffective(record) {
			continue
		}

		entry := domain.ClassifiedAssignment{
			SKUID:           record.SKUID,
			SKUName:         SKUName(c.skuNames, record.SKUID),
			Source:          domain.Direct(),
			DisabledPlanIDs: record.DisabledPlanIDs,
		}
		if record.AssignedByGroupID != "" {
			name := c.groups.Resolve(ctx, record.AssignedByGroupID)
			entry.Source = domain.FromGroup(record.AssignedByGroupID, name)
		}
		if c.allStates {
			entry.State = record.State
			entry.Error = normalizeError(record.Error)
		}

		classified = append(classified, entry)
	}

	return classified
}

// isEffective reports whether an assignment is active and error-free. The
// directory reports "None" rather than an empty error on healthy records.
func isEffective(record store.LicenseAssignment) bool {
	return record.State == store.AssignmentStateActive && normalizeError(record.Error) == ""
}

func normalizeError(err string) string {
	if err == "None" {
		return ""
	}
	return err
}

// SKUName resolves a SKU id against the tenant index, falling back to a
// stable placeholder for ids the tenant no longer carries.
func SKUName(skuNames map[string]string, id string) string {
	if name, ok := skuNames[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Unknown SKU: %s", id)
}

// BuildSKUIndex fetches the tenant's subscribed SKUs once and returns the
// id -> part number map used for the rest of the run.
func BuildSKUIndex(ctx context.Context, directory graph.Directory) (map[string]string, error) {
	skus, err := directory.ListSkus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build SKU index: %w", err)
	}

	index := make(map[string]string, len(skus))
	for _, sku := range skus {
		index[sku.ID] = sku.PartNumber
	}
	return index, nil
}

// ErrUnknownSKU marks a part number the tenant does not carry, as opposed
// to a failure talking to the directory.
var ErrUnknownSKU = errors.New("SKU not found in tenant")

// FindSKUID maps a human part number (e.g. "SPE_E5") back to its SKU id.
func FindSKUID(ctx context.Context, directory graph.Directory, partNumber string) (string, error) {
	skus, err := directory.ListSkus(ctx)
	if err != nil {
		return "", err
	}
	for _, sku := range skus {
		if sku.PartNumber == partNumber {
			return sku.ID, nil
		}
	}
	return "", fmt.Errorf("SKU %q: %w", partNumber, ErrUnknownSKU)
}
