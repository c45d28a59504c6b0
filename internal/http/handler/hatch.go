package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"dxfhatch/internal/model"
	"dxfhatch/internal/service"
)

// ContentTypeDXF is sent with every drawing.
const ContentTypeDXF = "application/dxf"

// Generate godoc
// @Summary Generate a hatched circle
// @Description Builds a millimetre drawing with a circle and an associative ANSI31 hatch over it. Omitted fields take their default.
// @Tags drawings
// @Accept json
// @Produce application/dxf
// @Param params body model.GenerateParams false "Drawing parameters"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /generate [post]
func Generate(svc service.HatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := model.DefaultGenerateParams()

		if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
			if err := json.Unmarshal(body, &params); err != nil {
				return writeDecodeError(c, err)
			}
		}

		file, err := svc.Generate(c.UserContext(), params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendDrawing(c, file)
	}
}

// HatchOnUpload godoc
// @Summary Hatch the first circle of an uploaded drawing
// @Description Adds an associative ANSI31 hatch over the first model-space CIRCLE of the uploaded DXF. Parameters are read from the query string, then from form fields.
// @Tags drawings
// @Accept multipart/form-data
// @Produce application/dxf
// @Param file formData file true "DXF drawing"
// @Param spacing query number false "Hatch spacing in mm" default(0.2)
// @Param angle_deg query number false "Hatch angle in degrees" default(45)
// @Param layer_hatch query string false "Layer of the hatch" default(HATCH)
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /hatch-on-upload [post]
func HatchOnUpload(svc service.HatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		params, ferrs := uploadParams(c)
		if len(ferrs) > 0 {
			return writeValidationError(c, ferrs)
		}

		return hatchUpload(c, svc, fh, params)
	}
}

// hatchUpload hands the stored multipart file to the service. A part that
// was accepted but cannot be reopened is a server fault.
func hatchUpload(c *fiber.Ctx, svc service.HatchService, fh *multipart.FileHeader, params model.UploadParams) error {
	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	defer f.Close()

	file, err := svc.HatchUpload(c.UserContext(), fh.Filename, f, params)
	if err != nil {
		return writeServiceError(c, err)
	}
	return sendDrawing(c, file)
}

// uploadParams reads the hatch parameters, preferring the query string over
// multipart form fields. Absent values keep their default.
func uploadParams(c *fiber.Ctx) (model.UploadParams, model.ValidationErrors) {
	params := model.DefaultUploadParams()
	var errs model.ValidationErrors

	lookup := func(key string) (string, bool) {
		if v := c.Query(key); v != "" {
			return v, true
		}
		if v := c.FormValue(key); v != "" {
			return v, true
		}
		return "", false
	}
	number := func(key string, dst *float64) {
		raw, ok := lookup(key)
		if !ok {
			return
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			errs = append(errs, model.FieldError{Field: key, Message: "must be a number"})
			return
		}
		*dst = v
	}

	number("spacing", &params.Spacing)
	number("angle_deg", &params.AngleDeg)
	if v, ok := lookup("layer_hatch"); ok {
		params.LayerHatch = v
	}
	return params, errs
}

func sendDrawing(c *fiber.Ctx, file *model.DrawingFile) error {
	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(file.Filename)
	c.Set(fiber.HeaderContentType, ContentTypeDXF)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Status(fiber.StatusOK).SendStream(bytes.NewReader(file.Data), len(file.Data))
}

// writeDecodeError reports a JSON body that cannot be decoded into the
// request parameters.
func writeDecodeError(c *fiber.Ctx, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return writeValidationError(c, model.ValidationErrors{
			{Field: typeErr.Field, Message: "must be a " + jsonType(typeErr.Type.Kind())},
		})
	}
	return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object")
}

func jsonType(k reflect.Kind) string {
	switch k {
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return "JSON object"
	}
}

func writeValidationError(c *fiber.Ctx, errs model.ValidationErrors) error {
	return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errs.Error(), errs)
}

// writeServiceError maps service errors to HTTP responses. Client errors keep
// their message; anything else becomes a generic 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verrs model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return writeValidationError(c, verrs)
	case errors.Is(err, service.ErrInvalidExtension):
		return writeError(c, fiber.StatusBadRequest, "INVALID_EXTENSION", err.Error())
	case errors.Is(err, service.ErrInvalidDrawing):
		return writeError(c, fiber.StatusBadRequest, "INVALID_DXF", err.Error())
	case errors.Is(err, service.ErrNoCircle):
		return writeError(c, fiber.StatusBadRequest, "NO_CIRCLE", err.Error())
	case errors.Is(err, service.ErrUnsupportedVersion):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_VERSION", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
