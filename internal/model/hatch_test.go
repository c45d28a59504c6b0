package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParams_Defaults(t *testing.T) {
	p := DefaultGenerateParams()
	require.NoError(t, json.Unmarshal([]byte(`{"radius": 4.5, "layer_hatch": "FILL"}`), &p))

	assert.Equal(t, GenerateParams{
		Radius:      4.5,
		Spacing:     0.2,
		AngleDeg:    45,
		LayerCircle: "CIRCLE",
		LayerHatch:  "FILL",
		Version:     "R2018",
	}, p)
	assert.NoError(t, p.Validate())
}

func TestGenerateParams_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *GenerateParams)
		wantFields []string
	}{
		{name: "zero radius", mutate: func(p *GenerateParams) { p.Radius = 0 }, wantFields: []string{"radius"}},
		{name: "negative spacing", mutate: func(p *GenerateParams) { p.Spacing = -0.1 }, wantFields: []string{"spacing"}},
		{name: "nan angle", mutate: func(p *GenerateParams) { p.AngleDeg = math.NaN() }, wantFields: []string{"angle_deg"}},
		{name: "infinite center", mutate: func(p *GenerateParams) { p.CenterX = math.Inf(1) }, wantFields: []string{"center_x"}},
		{name: "blank layer", mutate: func(p *GenerateParams) { p.LayerCircle = " " }, wantFields: []string{"layer_circle"}},
		{name: "bad layer chars", mutate: func(p *GenerateParams) { p.LayerHatch = "A/B" }, wantFields: []string{"layer_hatch"}},
		{name: "layer with line breaks", mutate: func(p *GenerateParams) { p.LayerHatch = "H\n  0\nLINE" }, wantFields: []string{"layer_hatch"}},
		{name: "layer with carriage return", mutate: func(p *GenerateParams) { p.LayerCircle = "C\r" }, wantFields: []string{"layer_circle"}},
		{name: "layer with tab", mutate: func(p *GenerateParams) { p.LayerCircle = "C\tD" }, wantFields: []string{"layer_circle"}},
		{name: "layer with delete", mutate: func(p *GenerateParams) { p.LayerHatch = "H\x7f" }, wantFields: []string{"layer_hatch"}},
		{name: "padded layer", mutate: func(p *GenerateParams) { p.LayerHatch = " FILL " }, wantFields: []string{"layer_hatch"}},
		{name: "missing version", mutate: func(p *GenerateParams) { p.Version = "" }, wantFields: []string{"version"}},
		{
			name: "several fields",
			mutate: func(p *GenerateParams) {
				p.Radius = -1
				p.Spacing = 0
			},
			wantFields: []string{"radius", "spacing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGenerateParams()
			tt.mutate(&p)

			err := p.Validate()
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)

			var fields []string
			for _, fe := range verrs {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestUploadParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultUploadParams().Validate())

	p := DefaultUploadParams()
	p.Spacing = 0
	p.LayerHatch = ""
	err := p.Validate()
	require.Error(t, err)
	assert.Equal(t, "invalid request: spacing must be greater than 0; layer_hatch is required", err.Error())
}
