package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/card"
	"github.com/kwanjiru/eduid/core/student"
)

type adminApi struct {
	conf      *core.Config
	svc       *student.Service
	assembler *card.Assembler
	log       core.Logger
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		conf:      deps.Conf,
		svc:       deps.StudentSvc,
		assembler: deps.Assembler,
		log:       deps.Logger,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/stats", api.stats)
	ag.GET("/submissions", api.querySubmissions)
	ag.GET("/submissions/:id", api.retrieveSubmission)
	ag.PUT("/submissions/:id/review", api.reviewSubmission)
	ag.GET("/submissions/:id/card", api.downloadCard)
	ag.POST("/submissions/print", api.bulkPrint)
}

// Handlers

func (api *adminApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats()
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *adminApi) querySubmissions(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	subs, total, err := api.svc.Submissions(filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []student.Submission{}
	}
	return ctx.JSON(http.StatusOK, SubmissionListResponse{
		Results: subs,
		Total:   total,
		Page:    filter.Page,
	})
}

func (api *adminApi) retrieveSubmission(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	sub, err := api.svc.GetSubmission(id)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrSubmissionNotFound, student.ErrNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "fetching submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *adminApi) reviewSubmission(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data student.Review
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sid, err := api.svc.Review(id, data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrSubmissionNotFound:
			return errHttpNotFound
		case student.ErrNotReviewable:
			return core.NewValidationError(student.ErrNotReviewable)
		}
		return errors.Wrap(err, "reviewing submission")
	}
	return ctx.JSON(http.StatusOK, sid)
}

func (api *adminApi) downloadCard(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	sub, err := api.svc.GetSubmission(id)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrSubmissionNotFound, student.ErrNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "fetching submission")
	}
	if sub.SchoolID.Status != student.StatusApproved && sub.SchoolID.Status != student.StatusPrinted {
		return errCardNotReady
	}

	fld := api.svc.CardField(sub)
	res, err := api.assembler.Assemble([]card.CardField{fld}, card.ModeSingle, time.Now().UTC(), "")
	if err != nil {
		return errors.Wrap(err, "rendering card")
	}

	filename := fmt.Sprintf("ID_%s.pdf", sub.SchoolID.IDNumber)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", res.PDF)
}

// bulkPrint renders all printable submissions among the requested ids into a
// single batch document and marks them printed once rendering succeeds.
func (api *adminApi) bulkPrint(ctx echo.Context) error {
	var data BulkPrintRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkPrintRequest")
	}
	if len(data.IDs) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "ids", Error: "at least one submission id is required"})
	}

	subs, err := api.svc.PrintableSubmissions(data.IDs...)
	if err != nil {
		return errors.Wrap(err, "fetching printable submissions")
	}
	if len(subs) == 0 {
		return core.NewValidationError(errors.New("no printable submissions in selection"))
	}

	now := time.Now().UTC()
	fields := make([]card.CardField, 0, len(subs))
	printableIDs := make([]int, 0, len(subs))
	for _, sub := range subs {
		fields = append(fields, api.svc.CardField(sub))
		printableIDs = append(printableIDs, sub.SchoolID.ID)
	}

	title := fmt.Sprintf("%s - Card Batch %s", api.conf.School.Name, now.Format("2006-01-02"))
	res, err := api.assembler.Assemble(fields, card.ModeBulk, now, title)
	if err != nil {
		return errors.Wrap(err, "rendering batch")
	}

	if _, err = api.svc.MarkPrinted(printableIDs...); err != nil {
		// the PDF is already rendered; deliver it and surface the bookkeeping failure in logs
		api.log.Error("marking submissions printed", err)
	}

	filename := fmt.Sprintf("bulk_print_%s.pdf", now.Format("20060102_150405"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", res.PDF)
}

type (
	SubmissionListResponse struct {
		Results []student.Submission `json:"results"`
		Total   int                  `json:"total"`
		Page    int                  `json:"page"`
	}

	BulkPrintRequest struct {
		IDs []int `json:"ids"`
	}
)
