package snapshot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/models/store"
	"github.com/de-tools/license-atlas/pkg/store/graph"
	"github.com/de-tools/license-atlas/pkg/store/sqlite/membership"
)

type Config struct {
	// ExtensionAttribute is the onPremisesExtensionAttributes field copied
	// into each snapshot row, e.g. "extensionAttribute4".
	ExtensionAttribute string
	// MaxRowsPerUser caps how many membership rows a single user may hold
	// across all groups; 0 disables the cap.
	MaxRowsPerUser int
}

// Ingestor copies group-membership lists into the local snapshot store.
// Re-running against an unchanged membership list inserts nothing.
type Ingestor struct {
	directory graph.Directory
	store     membership.Store
	config    Config
}

func NewIngestor(directory graph.Directory, membershipStore membership.Store, config Config) *Ingestor {
	return &Ingestor{
		directory: directory,
		store:     membershipStore,
		config:    config,
	}
}

// Run ingests every listed group sequentially. Per-member failures are
// counted and logged; only an empty group list is an error.
func (i *Ingestor) Run(ctx context.Context, groupIDs []string) (store.SnapshotStats, error) {
	logger := zerolog.Ctx(ctx)
	stats := store.SnapshotStats{}

	if len(groupIDs) == 0 {
		return stats, fmt.Errorf("no groups configured for snapshot")
	}

	for _, groupID := range groupIDs {
		groupName := groupID
		group, err := i.directory.GetGroup(ctx, groupID)
		if err != nil {
			logger.Warn().Err(err).Str("group", groupID).Msg("group lookup failed, keeping id as name")
		} else {
			groupName = group.DisplayName
		}

		members, err := i.directory.ListGroupMembers(ctx, groupID)
		if err != nil {
			logger.Error().Err(err).Str("group", groupID).Msg("failed to list group members")
			stats.Failed++
			continue
		}

		for _, member := range members {
			if i.config.MaxRowsPerUser > 0 {
				count, err := i.store.CountForUser(ctx, member.UPN)
				if err != nil {
					return stats, fmt.Errorf("count rows for %q: %w", member.UPN, err)
				}
				if count >= i.config.MaxRowsPerUser {
					stats.Skipped++
					continue
				}
			}

			department := ""
			if i.config.ExtensionAttribute != "" {
				department, err = i.directory.GetUserExtensionAttribute(ctx, member.ID, i.config.ExtensionAttribute)
				if err != nil {
					logger.Warn().Err(err).Str("upn", member.UPN).Msg("extension attribute fetch failed, member skipped")
					stats.Failed++
					continue
				}
			}

			inserted, err := i.store.Add(ctx, store.MembershipRow{
				UPN:        member.UPN,
				GroupID:    groupID,
				GroupName:  groupName,
				Department: department,
			})
			if err != nil {
				return stats, fmt.Errorf("insert row for %q: %w", member.UPN, err)
			}
			if inserted {
				stats.Inserted++
			} else {
				stats.Skipped++
			}
		}

		logger.Info().
			Str("group", groupName).
			Int("members", len(members)).
			Msg("group snapshot complete")
	}

	return stats, nil
}
