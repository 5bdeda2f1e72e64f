package licenses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/adapters"
	"github.com/de-tools/license-atlas/pkg/models/api"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/report"
	"github.com/de-tools/license-atlas/pkg/store/graph"
)

type Handler struct {
	directory graph.Directory
	skuIndex  map[string]string
	groups    *classify.GroupNameCache
}

func NewHandler(directory graph.Directory, skuIndex map[string]string) *Handler {
	h := &Handler{
		directory: directory,
		skuIndex:  skuIndex,
	}
	h.groups = classify.NewGroupNameCache(h.resolveGroupName)
	return h
}

func (h *Handler) resolveGroupName(ctx context.Context, id string) (string, error) {
	group, err := h.directory.GetGroup(ctx, id)
	if err != nil {
		return "", err
	}
	return group.DisplayName, nil
}

func (h *Handler) GetUserLicenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	upn := chi.URLParam(r, "upn")

	user, err := h.directory.GetUser(ctx, upn)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("upn", upn).Msg("failed to fetch user")
		http.Error(w, "directory lookup failed", http.StatusBadGateway)
		return
	}

	classifier := classify.NewClassifier(h.skuIndex, h.groups, classify.Options{
		IncludeAllStates: r.URL.Query().Get("all_states") == "1",
	})
	classified := classifier.Classify(ctx, user.Assignments)

	response := adapters.MapUserLicensesToAPI(user.UPN, user.DisplayName, classified)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		logger.Error().
			Err(err).
			Str("upn", upn).
			Msg("failed to encode user licenses")
	}
}

func (h *Handler) GetGroupUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	identifiers := splitUsers(r.URL.Query().Get("users"))
	if len(identifiers) == 0 {
		http.Error(w, "users query parameter is required", http.StatusBadRequest)
		return
	}

	classifier := classify.NewClassifier(h.skuIndex, h.groups, classify.Options{})
	batch := report.NewBatch(h.directory, classifier, "")

	_, assignments := batch.ProcessUsers(ctx, identifiers)
	rollup := report.GroupUsage(assignments)

	response := make([]api.GroupUsage, 0, len(rollup))
	for _, group := range rollup {
		response = append(response, adapters.MapGroupUsageToAPI(group))
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode group usage")
	}
}

func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	identifiers := splitUsers(r.URL.Query().Get("users"))
	skuA := r.URL.Query().Get("sku_a")
	skuB := r.URL.Query().Get("sku_b")
	if len(identifiers) == 0 || skuA == "" || skuB == "" {
		http.Error(w, "users, sku_a and sku_b query parameters are required", http.StatusBadRequest)
		return
	}

	skuAID, ok := h.findSKU(w, r, skuA)
	if !ok {
		return
	}
	skuBID, ok := h.findSKU(w, r, skuB)
	if !ok {
		return
	}

	classifier := classify.NewClassifier(h.skuIndex, h.groups, classify.Options{
		TargetSKUs: []string{skuAID, skuBID},
	})
	batch := report.NewBatch(h.directory, classifier, "")

	summaries, assignments := batch.ProcessUsers(ctx, identifiers)
	comparison := report.CompareSKUs(report.HeldSKUs(assignments), skuAID, skuBID)
	comparison = report.AddFailures(comparison, report.CountFailed(summaries))
	comparison.SKUA = skuA
	comparison.SKUB = skuB

	err := json.NewEncoder(w).Encode(adapters.MapComparisonToAPI(comparison))
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode comparison")
	}
}

// findSKU resolves a part number to its SKU id, writing the response on
// failure: an unknown SKU is the caller's mistake, anything else is the
// directory's.
func (h *Handler) findSKU(w http.ResponseWriter, r *http.Request, partNumber string) (string, bool) {
	id, err := classify.FindSKUID(r.Context(), h.directory, partNumber)
	if err == nil {
		return id, true
	}
	if errors.Is(err, classify.ErrUnknownSKU) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("sku", partNumber).Msg("failed to resolve SKU")
	http.Error(w, "directory lookup failed", http.StatusBadGateway)
	return "", false
}

func splitUsers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	users := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			users = append(users, trimmed)
		}
	}
	return users
}
