package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc *course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses")
	cg.POST("", api.createCourse)
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)

	xg := g.Group("/extra-students")
	xg.POST("", api.createExtraStudent)
	xg.GET("", api.queryExtraStudents)
	xg.GET("/:id", api.retrieveExtraStudent)

	eg := g.Group("/enrollments")
	eg.POST("", api.enroll)
	eg.GET("", api.queryEnrollments)
	eg.PUT("/:id/status", api.updateEnrollmentStatus)
}

type EnrollmentStatusRequest struct {
	Status course.EnrollmentStatus `json:"status" validate:"required"`
}

// Handlers

func (api *courseApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryAllCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetCourseByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) createExtraStudent(ctx echo.Context) error {
	var data course.NewExtraStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExtraStudent")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	std, err := api.svc.CreateExtraStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *courseApi) queryExtraStudents(ctx echo.Context) error {
	students, err := api.svc.QueryAllExtraStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing extra students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) retrieveExtraStudent(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	std, err := api.svc.GetExtraStudentByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	var data course.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	enrollments, err := api.svc.ListActiveEnrollments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *courseApi) updateEnrollmentStatus(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var data EnrollmentStatusRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentStatusRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if !data.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown enrollment status"})
	}

	enr, err := api.svc.UpdateEnrollmentStatus(ctx.Request().Context(), id, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}
