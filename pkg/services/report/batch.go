package report

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/models/domain"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/store/graph"
)

// Batch runs the per-user fetch/classify/summarize pipeline over a list of
// user identifiers. One user's failure never stops the batch: the user gets
// an error-marked row and processing moves on.
type Batch struct {
	directory  graph.Directory
	classifier *classify.Classifier
	delimiter  string
}

func NewBatch(directory graph.Directory, classifier *classify.Classifier, delimiter string) *Batch {
	return &Batch{
		directory:  directory,
		classifier: classifier,
		delimiter:  delimiter,
	}
}

func (b *Batch) ProcessUsers(ctx context.Context, identifiers []string) ([]domain.UserLicenseSummary, []UserAssignments) {
	logger := zerolog.Ctx(ctx)

	summaries := make([]domain.UserLicenseSummary, 0, len(identifiers))
	assignments := make([]UserAssignments, 0, len(identifiers))

	for _, identifier := range identifiers {
		user, err := b.directory.GetUser(ctx, identifier)
		if err != nil {
			logger.Warn().Err(err).Str("user", identifier).Msg("user fetch failed")
			summaries = append(summaries, ErrorSummary(identifier, err.Error()))
			continue
		}

		classified := b.classifier.Classify(ctx, user.Assignments)
		summaries = append(summaries, Summarize(user.UPN, user.DisplayName, classified, b.delimiter))
		assignments = append(assignments, UserAssignments{
			UPN:         user.UPN,
			DisplayName: user.DisplayName,
			Assignments: classified,
		})
	}

	return summaries, assignments
}

// HeldSKUs projects the classified assignments down to the SKU-id sets the
// comparison report partitions over.
func HeldSKUs(users []UserAssignments) []UserSKUs {
	out := make([]UserSKUs, 0, len(users))
	for _, user := range users {
		ids := make([]string, 0, len(user.Assignments))
		for _, c := range user.Assignments {
			ids = append(ids, c.SKUID)
		}
		out = append(out, UserSKUs{UPN: user.UPN, SKUIDs: ids})
	}
	return out
}
