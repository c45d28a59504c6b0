package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"dxfhatch/internal/dxf"
	"dxfhatch/internal/model"
)

var (
	ErrInvalidExtension   = errors.New("upload a .dxf file")
	ErrInvalidDrawing     = errors.New("invalid DXF")
	ErrNoCircle           = errors.New("no CIRCLE found in the uploaded DXF")
	ErrReaderNil          = errors.New("reader is nil")
	ErrUnsupportedVersion = dxf.ErrUnsupportedVersion
)

const (
	// HatchPattern is the predefined pattern used for every hatch. With
	// ANSI31 the scale is set to the requested spacing.
	HatchPattern = "ANSI31"

	dxfExt        = ".dxf"
	hatchedSuffix = "_HATCHED.dxf"
	tracerName    = "dxfhatch/internal/service"
)

// HatchService defines the drawing use cases behind the HTTP endpoints.
type HatchService interface {
	// Generate builds a new millimetre drawing holding a circle on
	// LayerCircle and an associative hatch over it on LayerHatch.
	Generate(ctx context.Context, p model.GenerateParams) (*model.DrawingFile, error)

	// HatchUpload adds an associative hatch over the first model-space circle
	// of an uploaded drawing. The extension of filename is checked before r
	// is read.
	HatchUpload(ctx context.Context, filename string, r io.Reader, p model.UploadParams) (*model.DrawingFile, error)
}

// hatchService is a stateless implementation of HatchService.
type hatchService struct {
	logger *zap.Logger
	tracer trace.Tracer
}

// NewHatchService constructs a new HatchService.
func NewHatchService(logger *zap.Logger) HatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hatchService{
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *hatchService) Generate(ctx context.Context, p model.GenerateParams) (file *model.DrawingFile, err error) {
	_, span := s.tracer.Start(ctx, "HatchService.Generate", trace.WithAttributes(
		attribute.Float64("hatch.radius", p.Radius),
		attribute.Float64("hatch.spacing", p.Spacing),
		attribute.Float64("hatch.angle_deg", p.AngleDeg),
		attribute.String("dxf.version", p.Version),
	))
	defer func() { s.finish(span, "generate", file, err) }()

	if err = p.Validate(); err != nil {
		return nil, err
	}

	doc, err := dxf.New(p.Version)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{p.LayerCircle, p.LayerHatch} {
		if err = doc.EnsureLayer(name); err != nil {
			return nil, fmt.Errorf("create layer %q: %w", name, err)
		}
	}

	circle, err := doc.AddCircle(dxf.Circle{
		Layer:  p.LayerCircle,
		Center: dxf.Point{X: p.CenterX, Y: p.CenterY},
		Radius: p.Radius,
	})
	if err != nil {
		return nil, fmt.Errorf("add circle: %w", err)
	}
	if _, err = doc.AddHatch(dxf.CircleHatch(circle, p.LayerHatch, pattern(p.AngleDeg, p.Spacing))); err != nil {
		return nil, fmt.Errorf("add hatch: %w", err)
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize drawing: %w", err)
	}
	return &model.DrawingFile{
		Filename: GeneratedFilename(p.Spacing, p.AngleDeg),
		Data:     data,
	}, nil
}

func (s *hatchService) HatchUpload(ctx context.Context, filename string, r io.Reader, p model.UploadParams) (file *model.DrawingFile, err error) {
	_, span := s.tracer.Start(ctx, "HatchService.HatchUpload", trace.WithAttributes(
		attribute.String("upload.filename", filename),
		attribute.Float64("hatch.spacing", p.Spacing),
		attribute.Float64("hatch.angle_deg", p.AngleDeg),
	))
	defer func() { s.finish(span, "hatch_upload", file, err) }()

	if !HasDXFExtension(filename) {
		return nil, ErrInvalidExtension
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	doc, err := dxf.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrawing, err)
	}
	span.SetAttributes(attribute.String("dxf.version", doc.Version()))

	if err = doc.EnsureLayer(p.LayerHatch); err != nil {
		return nil, fmt.Errorf("create layer %q: %w", p.LayerHatch, err)
	}

	circle, ok := doc.FirstCircle()
	if !ok {
		return nil, ErrNoCircle
	}
	if _, err = doc.AddHatch(dxf.CircleHatch(circle, p.LayerHatch, pattern(p.AngleDeg, p.Spacing))); err != nil {
		return nil, fmt.Errorf("add hatch: %w", err)
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize drawing: %w", err)
	}
	return &model.DrawingFile{
		Filename: HatchedFilename(filename),
		Data:     data,
	}, nil
}

// finish records the outcome on the span and in the log.
func (s *hatchService) finish(span trace.Span, op string, file *model.DrawingFile, err error) {
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsClientError(err) {
			s.logger.Info("drawing request rejected", zap.String("op", op), zap.Error(err))
			return
		}
		s.logger.Error("drawing request failed", zap.String("op", op), zap.Error(err))
		return
	}

	span.SetAttributes(attribute.Int("dxf.bytes", len(file.Data)))
	s.logger.Debug("drawing produced",
		zap.String("op", op),
		zap.String("filename", file.Filename),
		zap.Int("bytes", len(file.Data)),
	)
}

// IsClientError reports whether err is caused by the request rather than by
// the service.
func IsClientError(err error) bool {
	var verrs model.ValidationErrors
	return errors.As(err, &verrs) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidDrawing) ||
		errors.Is(err, ErrNoCircle) ||
		errors.Is(err, ErrReaderNil) ||
		errors.Is(err, ErrUnsupportedVersion)
}

func pattern(angleDeg, spacing float64) dxf.Pattern {
	return dxf.Pattern{Name: HatchPattern, Angle: angleDeg, Scale: spacing}
}

// HasDXFExtension reports whether name ends in .dxf, ignoring case.
func HasDXFExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), dxfExt)
}

// GeneratedFilename names a generated drawing after its spacing and its
// angle truncated toward zero, e.g. circle_hatch_0.2mm_45deg.dxf.
func GeneratedFilename(spacing, angleDeg float64) string {
	deg := math.Trunc(angleDeg)
	if deg == 0 {
		deg = 0 // drop the sign of -0
	}
	return fmt.Sprintf("circle_hatch_%smm_%sdeg.dxf", formatDecimal(spacing), strconv.FormatFloat(deg, 'f', 0, 64))
}

// HatchedFilename drops any directory part and the .dxf extension of an
// uploaded filename and appends _HATCHED.dxf.
func HatchedFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if HasDXFExtension(base) {
		base = base[:len(base)-len(dxfExt)]
	}
	return base + hatchedSuffix
}

// formatDecimal prints the shortest round-trip form of v, keeping a decimal
// point on whole numbers and switching to exponent form outside [1e-4, 1e16).
func formatDecimal(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
