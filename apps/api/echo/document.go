package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

const uploadFileField = "file"

type documentApi struct {
	svc           *document.Service
	validate      *validator.Validate
	metrics       *metrics
	maxUploadSize int64
}

func registerDocumentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *document.Service,
	validate *validator.Validate,
	m *metrics,
	maxUploadSize int64,
) {
	api := documentApi{
		svc:           svc,
		validate:      validate,
		metrics:       m,
		maxUploadSize: maxUploadSize,
	}

	g.GET("/documents/stats", api.stats, jwt)

	dg := g.Group("/students/:id/documents", jwt)
	dg.GET("", api.retrieveSet)
	dg.GET("/history", api.history)
	dg.POST("/:type", api.upload)
	dg.POST("/:type/approve", api.approve)
	dg.POST("/:type/reject", api.reject)
}

// slotParams identifies a document slot from the request path.
type slotParams struct {
	StudentID string `json:"id"`
	Type      string `json:"type" validate:"doctype"`
}

func (sp slotParams) Validate(validate *validator.Validate) (document.Type, error) {
	if err := validate.Struct(sp); err != nil {
		return "", err
	}
	return document.ParseType(sp.Type)
}

func getSlotParams(ctx echo.Context) slotParams {
	return slotParams{StudentID: ctx.Param("id"), Type: ctx.Param("type")}
}

// RejectRequest is the body of a rejection.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Handlers

func (api *documentApi) retrieveSet(ctx echo.Context) error {
	set, err := api.svc.GetSet(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting documents")
	}
	return ctx.JSON(http.StatusOK, set)
}

func (api *documentApi) history(ctx echo.Context) error {
	items, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting document history")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *documentApi) upload(ctx echo.Context) error {
	params := getSlotParams(ctx)
	docType, err := params.Validate(api.validate)
	if err != nil {
		return err
	}

	if api.maxUploadSize > 0 {
		// leave room for the multipart envelope
		ctx.Request().Body = http.MaxBytesReader(ctx.Response(), ctx.Request().Body, api.maxUploadSize+1<<20)
	}
	fh, err := ctx.FormFile(uploadFileField)
	if err != nil {
		if cause := errors.Cause(err); cause == http.ErrMissingFile || cause == http.ErrNotMultipart {
			return core.NewValidationError(nil, core.FieldError{Field: uploadFileField, Error: "this field is required"})
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return document.ErrFileTooLarge
		}
		return errors.Wrap(err, "reading multipart file")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening multipart file")
	}
	defer func() { _ = f.Close() }()

	res, err := api.svc.Upload(ctx.Request().Context(), document.FileUpload{
		StudentID:   params.StudentID,
		Type:        docType,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}, contextActor(ctx))
	api.metrics.observeTransition(document.ActionUpload, docType, err)
	if err != nil {
		return errors.Wrap(err, "uploading document")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *documentApi) approve(ctx echo.Context) error {
	params := getSlotParams(ctx)
	docType, err := params.Validate(api.validate)
	if err != nil {
		return err
	}

	res, err := api.svc.Approve(ctx.Request().Context(), params.StudentID, docType, contextActor(ctx))
	api.metrics.observeTransition(document.ActionApprove, docType, err)
	if err != nil {
		return errors.Wrap(err, "approving document")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *documentApi) reject(ctx echo.Context) error {
	params := getSlotParams(ctx)
	docType, err := params.Validate(api.validate)
	if err != nil {
		return err
	}
	var data RejectRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RejectRequest")
	}

	res, err := api.svc.Reject(ctx.Request().Context(), params.StudentID, docType, data.Reason, contextActor(ctx))
	api.metrics.observeTransition(document.ActionReject, docType, err)
	if err != nil {
		if errors.Cause(err) == document.ErrMissingReason {
			return core.NewValidationError(err, core.FieldError{Field: "reason", Error: err.Error()})
		}
		return errors.Wrap(err, "rejecting document")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *documentApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing document stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
