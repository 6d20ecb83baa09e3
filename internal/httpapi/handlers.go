package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryabkov82/backoffice-server/internal/ingest"
	"github.com/ryabkov82/backoffice-server/internal/storage"
)

// Store is the persistence one resource needs
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, doc T) (T, error)
	Update(ctx context.Context, id string, fields map[string]any) (T, error)
	Delete(ctx context.Context, id string) error
}

// Importer runs the CSV pipeline for one resource
type Importer[T any] interface {
	Process(ctx context.Context, path string, opts ingest.CSVOptions) (*ingest.Outcome[T], error)
}

// resource serves the CRUD and import endpoints of one record type
type resource[T any] struct {
	title     string // "Customer"
	plural    string // "customers"
	store     Store[T]
	importer  Importer[T]
	uploadDir string
	logger    *zap.Logger

	decodeCreate func(c echo.Context) (T, error)
	decodePatch  func(c echo.Context) (map[string]any, error)
}

func (r *resource[T]) register(g *echo.Group) {
	g.GET("", r.list)
	g.POST("", r.create)
	g.POST("/import", r.importCSV)
	g.PATCH("/:id", r.patch)
	g.DELETE("/:id", r.remove)
}

// list handles GET /api/{plural}
func (r *resource[T]) list(c echo.Context) error {
	items, err := r.store.List(c.Request().Context())
	if err != nil {
		r.logger.Error("list failed", zap.String("resource", r.plural), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, items)
}

// create handles POST /api/{plural}
func (r *resource[T]) create(c echo.Context) error {
	doc, err := r.decodeCreate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	saved, err := r.store.Insert(c.Request().Context(), doc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	return c.JSON(http.StatusCreated, saved)
}

// patch handles PATCH /api/{plural}/:id
func (r *resource[T]) patch(c echo.Context) error {
	fields, err := r.decodePatch(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	updated, err := r.store.Update(c.Request().Context(), c.Param("id"), fields)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorBody(r.title+" not found"))
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, updated)
}

// remove handles DELETE /api/{plural}/:id
func (r *resource[T]) remove(c echo.Context) error {
	err := r.store.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorBody(r.title+" not found"))
	}
	if err != nil {
		r.logger.Error("delete failed", zap.String("resource", r.plural), zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error deleting " + strings.ToLower(r.title),
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, errorBody(r.title+" deleted successfully"))
}

// importCSV handles POST /api/{plural}/import
func (r *resource[T]) importCSV(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("No file uploaded or invalid file type"))
	}
	if !ingest.AcceptsContentType(fh.Header.Get(echo.HeaderContentType), fh.Filename) {
		return c.JSON(http.StatusBadRequest, errorBody("Only CSV files are allowed"))
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	path, err := ingest.SaveUpload(r.uploadDir, src)
	if err != nil {
		return err
	}

	opts := ingest.CSVOptions{
		Encoding:  c.FormValue("encoding"),
		Delimiter: c.FormValue("delimiter"),
	}

	// an import runs to completion even if the client goes away
	ctx := context.WithoutCancel(c.Request().Context())
	out, err := r.importer.Process(ctx, path, opts)
	if err != nil {
		return r.importFailed(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      fmt.Sprintf("Successfully imported %d %s", out.InsertedCount, r.plural),
		r.plural:       out.Inserted,
		"rejectedRows": out.Rejected,
	})
}

func (r *resource[T]) importFailed(c echo.Context, err error) error {
	var (
		noRows      *ingest.NoValidRowsError
		parseErr    *ingest.ParseError
		insertErr   *ingest.InsertError
		unsupported *ingest.UnsupportedFileTypeError
	)
	switch {
	case errors.As(err, &noRows):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message":      noRows.Error(),
			"rejectedRows": noRows.Rejected,
		})
	case errors.As(err, &unsupported):
		return c.JSON(http.StatusBadRequest, errorBody("Only CSV files are allowed"))
	case errors.Is(err, ingest.ErrInvalidOptions):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.As(err, &parseErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Error parsing CSV file: " + parseErr.Err.Error(),
			"error":   parseErr.Error(),
		})
	case errors.As(err, &insertErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Error importing " + r.plural + ": " + insertErr.Err.Error(),
			"error":   insertErr.Error(),
		})
	default:
		r.logger.Error("import failed", zap.String("resource", r.plural), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error processing CSV file",
			"error":   err.Error(),
		})
	}
}

func errorBody(msg string) echo.Map {
	return echo.Map{"message": msg}
}
