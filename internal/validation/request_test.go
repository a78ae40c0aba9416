package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "crickalytics/internal/errors"
	api "crickalytics/pkg/contracts/api/v1"
)

func TestRequestValidatorViewRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        api.ViewRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  api.ViewRequest{View: api.ViewTopPartners, Batsman: "A", TopN: 10},
		},
		{
			name:       "missing view",
			req:        api.ViewRequest{},
			wantFields: []string{"view"},
		},
		{
			name:       "unknown view",
			req:        api.ViewRequest{View: "scoreboard"},
			wantFields: []string{"view"},
		},
		{
			name:       "negative match id and top n too large",
			req:        api.ViewRequest{View: api.ViewMatchBowlers, MatchID: -3, TopN: 5000},
			wantFields: []string{"match_id", "top_n"},
		},
		{
			name:       "year out of range",
			req:        api.ViewRequest{View: api.ViewMatchesPerYear, Years: []int{2019, 1800}},
			wantFields: []string{"years[1]"},
		},
	}

	rv := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rv.Struct(tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestRequestValidatorExportFormat(t *testing.T) {
	rv := NewRequestValidator()

	err := rv.Struct(api.ExportRequest{ViewRequest: api.ViewRequest{View: api.ViewTeamWickets}, Format: "pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	assert.NoError(t, rv.Struct(api.ExportRequest{ViewRequest: api.ViewRequest{View: api.ViewTeamWickets}, Format: "xlsx"}))
}

func TestUnknownViewMessageListsViews(t *testing.T) {
	err := NewRequestValidator().Struct(api.ViewRequest{View: "nope"})

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	details := apiErr.Details.(apierrors.ValidationErrors)
	require.Len(t, details.Errors, 1)
	assert.Contains(t, details.Errors[0].Message, api.ViewPhaseComparison)
}
