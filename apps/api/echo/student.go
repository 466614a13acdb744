package echoapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/card"
	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
)

var (
	errStudentNotFoundInCtx = errors.New("student object not found in echo.Context")
	errCardNotReady         = echo.NewHTTPError(http.StatusConflict, "no approved card submission")
	errInvalidPhoto         = "a valid png, jpg or gif image is required"

	contextStudentKey = "student"
)

type studentApi struct {
	conf      *core.Config
	usrSvc    *user.Service
	svc       *student.Service
	assembler *card.Assembler
	log       core.Logger
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		conf:      deps.Conf,
		usrSvc:    deps.UserSvc,
		svc:       deps.StudentSvc,
		assembler: deps.Assembler,
		log:       deps.Logger,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	sg.POST("/register", api.register)

	// authed endpoints, all operating on the caller's own profile
	mg := sg.Group("/me", jwt, api.ctxStudentMiddleware())
	mg.GET("", api.retrieve)
	mg.PUT("", api.update)
	mg.POST("/photo", api.uploadPhoto)
	mg.POST("/submissions", api.submit)
	mg.GET("/card", api.downloadCard)
}

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	data.NewUser.Role = user.RoleStudent
	if err := data.NewUser.Validate(api.usrSvc); err != nil {
		return err
	}
	if err := data.NewStudent.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.usrSvc.Create(data.NewUser)
	if err != nil {
		return errors.Wrap(err, "creating user account")
	}

	st, sid, err := api.svc.Register(usr.ID, data.NewStudent)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{User: usr, Student: st, Submission: sid})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	resp := ProfileResponse{Student: st}
	if sid, err := api.svc.LatestSubmission(st.ID); err == nil {
		resp.Submission = &sid
	} else if errors.Cause(err) != student.ErrSubmissionNotFound {
		return errors.Wrap(err, "fetching latest submission")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *studentApi) update(ctx echo.Context) error {
	st, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	st, err := api.svc.UpdateProfile(st.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) uploadPhoto(ctx echo.Context) error {
	st, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	fh, err := ctx.FormFile("photo")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: errInvalidPhoto})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: errInvalidPhoto})
	}

	// a fresh name per upload, stale copies are removed below
	relPath := filepath.Join("photos", fmt.Sprintf("student_%d_%s%s", st.ID, uuid.NewString(), ext))
	absPath := filepath.Join(api.conf.MediaRoot, relPath)
	if err = saveUpload(fh, absPath); err != nil {
		return errors.Wrap(err, "saving photo")
	}

	// anything that does not decode would later poison card rendering
	if _, err = imaging.Open(absPath); err != nil {
		_ = os.Remove(absPath)
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: errInvalidPhoto})
	}

	prevPath := st.PhotoPath
	st, err = api.svc.SetPhoto(st.ID, relPath)
	if err != nil {
		return errors.Wrap(err, "recording photo path")
	}
	if prevPath != "" {
		_ = os.Remove(filepath.Join(api.conf.MediaRoot, prevPath))
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) submit(ctx echo.Context) error {
	st, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	sid, err := api.svc.Submit(st.ID)
	if err != nil {
		if errors.Cause(err) == student.ErrAlreadySubmitted {
			return core.NewValidationError(student.ErrAlreadySubmitted)
		}
		return errors.Wrap(err, "submitting card request")
	}
	return ctx.JSON(http.StatusCreated, sid)
}

func (api *studentApi) downloadCard(ctx echo.Context) error {
	st, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	sid, err := api.svc.LatestSubmission(st.ID)
	if err != nil {
		if errors.Cause(err) == student.ErrSubmissionNotFound {
			return errCardNotReady
		}
		return errors.Wrap(err, "fetching latest submission")
	}
	if sid.Status != student.StatusApproved && sid.Status != student.StatusPrinted {
		return errCardNotReady
	}

	fld := api.svc.CardField(student.Submission{SchoolID: sid, Student: st})
	res, err := api.assembler.Assemble([]card.CardField{fld}, card.ModeSingle, time.Now().UTC(), "")
	if err != nil {
		return errors.Wrap(err, "rendering card")
	}

	filename := fmt.Sprintf("ID_%s.pdf", sid.IDNumber)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", res.PDF)
}

func (api *studentApi) ctxStudentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, api.usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			st, err := api.svc.GetByUserID(ctxUsr.ID)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by user ID")
			}
			ctx.Set(contextStudentKey, st)
			return next(ctx)
		}
	}
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, src)
	return err
}

type (
	RegisterRequest struct {
		user.NewUser
		student.NewStudent
	}

	RegisterResponse struct {
		User       user.User        `json:"user"`
		Student    student.Student  `json:"student"`
		Submission student.SchoolID `json:"submission"`
	}

	ProfileResponse struct {
		Student    student.Student   `json:"student"`
		Submission *student.SchoolID `json:"submission,omitempty"`
	}
)
