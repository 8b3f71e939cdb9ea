package echoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shraddhaWorks/new-timelly-sub001/core/tc"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
	"github.com/shraddhaWorks/new-timelly-sub001/services/metrics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type tcApi struct {
	svc      *tc.Service
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerTCAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *tc.Service,
	usrSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := tcApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	tg := g.Group("/tcs", jwt)

	tg.POST("", api.request, requesterMiddleware())
	tg.GET("", api.query, staffMiddleware())
	tg.GET("/export", api.export, adminMiddleware())

	// detail endpoints
	dg := tg.Group("/:id")
	dg.GET("", api.retrieve, staffMiddleware())
	dg.POST("/approve", api.approve, adminMiddleware())
	dg.POST("/reject", api.reject, adminMiddleware())
}

// Handlers

func (api *tcApi) request(ctx echo.Context) error {
	var data tc.NewTransferCertificate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTransferCertificate")
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cert, err := api.svc.Request(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Transfer Certificate requested",
		"tc":      cert,
	})
}

func (api *tcApi) query(ctx echo.Context) error {
	filter := new(tc.Filter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []tc.TransferCertificate{})
	}
	filter.Clean()

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	certs, err := api.svc.List(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying transfer certificates")
	}
	if certs == nil {
		certs = []tc.TransferCertificate{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *tcApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cert, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cert)
}

func (api *tcApi) approve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// the document upload step is optional; a missing or malformed body is
	// treated as an approval without a document
	var docURL *string
	if raw, rErr := io.ReadAll(ctx.Request().Body); rErr == nil && len(raw) > 0 {
		var body ApproveRequest
		if jErr := json.Unmarshal(raw, &body); jErr == nil && body.TCDocumentURL != "" {
			docURL = &body.TCDocumentURL
		}
	}

	cert, err := api.svc.Approve(ctx.Request().Context(), actor, ctx.Param("id"), docURL)
	if err != nil {
		return err
	}
	metrics.TCApprovals.Inc()

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Transfer Certificate approved successfully",
		"tc":      cert,
	})
}

func (api *tcApi) reject(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var reason *string
	if raw, rErr := io.ReadAll(ctx.Request().Body); rErr == nil && len(raw) > 0 {
		var body RejectRequest
		if jErr := json.Unmarshal(raw, &body); jErr == nil && body.Reason != "" {
			reason = &body.Reason
		}
	}

	cert, err := api.svc.Reject(ctx.Request().Context(), actor, ctx.Param("id"), reason)
	if err != nil {
		return err
	}
	metrics.TCRejections.Inc()

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Transfer Certificate rejected",
		"tc":      cert,
	})
}

func (api *tcApi) export(ctx echo.Context) error {
	filter := new(tc.Filter)
	if err := ctx.Bind(filter); err == nil {
		filter.Clean()
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	buf, filename, err := api.svc.ExportRegister(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "exporting transfer certificate register")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

type (
	ApproveRequest struct {
		TCDocumentURL string `json:"tc_document_url"`
	}

	RejectRequest struct {
		Reason string `json:"reason"`
	}
)
