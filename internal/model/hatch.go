package model

import (
	"fmt"
	"math"
	"strings"
)

// Default request values.
const (
	DefaultRadius      = 10.0
	DefaultSpacing     = 0.2
	DefaultAngleDeg    = 45.0
	DefaultLayerCircle = "CIRCLE"
	DefaultLayerHatch  = "HATCH"
	DefaultVersion     = "R2018"
)

// invalidLayerChars cannot appear in a DXF layer name.
const invalidLayerChars = "<>/\\\":;?*|=`"

// GenerateParams describes a circle filled with a line hatch. Lengths are in
// millimetres, angles in degrees.
type GenerateParams struct {
	CenterX     float64 `json:"center_x" example:"0"`
	CenterY     float64 `json:"center_y" example:"0"`
	Radius      float64 `json:"radius" example:"10"`
	Spacing     float64 `json:"spacing" example:"0.2"`
	AngleDeg    float64 `json:"angle_deg" example:"45"`
	LayerCircle string  `json:"layer_circle" example:"CIRCLE"`
	LayerHatch  string  `json:"layer_hatch" example:"HATCH"`
	Version     string  `json:"version" example:"R2018"`
}

// DefaultGenerateParams returns the values used for fields a request omits.
func DefaultGenerateParams() GenerateParams {
	return GenerateParams{
		Radius:      DefaultRadius,
		Spacing:     DefaultSpacing,
		AngleDeg:    DefaultAngleDeg,
		LayerCircle: DefaultLayerCircle,
		LayerHatch:  DefaultLayerHatch,
		Version:     DefaultVersion,
	}
}

// Validate checks the geometric and naming constraints of the request.
func (p GenerateParams) Validate() error {
	var errs ValidationErrors
	errs = checkFinite(errs, "center_x", p.CenterX)
	errs = checkFinite(errs, "center_y", p.CenterY)
	errs = checkPositive(errs, "radius", p.Radius)
	errs = checkPositive(errs, "spacing", p.Spacing)
	errs = checkFinite(errs, "angle_deg", p.AngleDeg)
	errs = checkLayer(errs, "layer_circle", p.LayerCircle)
	errs = checkLayer(errs, "layer_hatch", p.LayerHatch)
	if strings.TrimSpace(p.Version) == "" {
		errs = append(errs, FieldError{Field: "version", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UploadParams describes the hatch added to an uploaded drawing.
type UploadParams struct {
	Spacing    float64 `json:"spacing" example:"0.2"`
	AngleDeg   float64 `json:"angle_deg" example:"45"`
	LayerHatch string  `json:"layer_hatch" example:"HATCH"`
}

func DefaultUploadParams() UploadParams {
	return UploadParams{
		Spacing:    DefaultSpacing,
		AngleDeg:   DefaultAngleDeg,
		LayerHatch: DefaultLayerHatch,
	}
}

func (p UploadParams) Validate() error {
	var errs ValidationErrors
	errs = checkPositive(errs, "spacing", p.Spacing)
	errs = checkFinite(errs, "angle_deg", p.AngleDeg)
	errs = checkLayer(errs, "layer_hatch", p.LayerHatch)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DrawingFile is a serialized drawing ready to be sent as an attachment.
type DrawingFile struct {
	Filename string
	Data     []byte
}

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every invalid field of a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s %s", fe.Field, fe.Message))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func checkFinite(errs ValidationErrors, field string, v float64) ValidationErrors {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(errs, FieldError{Field: field, Message: "must be a finite number"})
	}
	return errs
}

func checkPositive(errs ValidationErrors, field string, v float64) ValidationErrors {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(errs, FieldError{Field: field, Message: "must be a finite number"})
	}
	if v <= 0 {
		return append(errs, FieldError{Field: field, Message: "must be greater than 0"})
	}
	return errs
}

func checkLayer(errs ValidationErrors, field, name string) ValidationErrors {
	switch {
	case strings.TrimSpace(name) == "":
		return append(errs, FieldError{Field: field, Message: "is required"})
	case strings.IndexFunc(name, isControl) >= 0:
		return append(errs, FieldError{Field: field, Message: "contains control characters"})
	case name != strings.TrimSpace(name):
		return append(errs, FieldError{Field: field, Message: "must not start or end with spaces"})
	case strings.ContainsAny(name, invalidLayerChars):
		return append(errs, FieldError{Field: field, Message: "contains characters not allowed in a layer name"})
	}
	return errs
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }
