package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/assignment"
	"github.com/trezcool/wordwise/core/docstore"
	"github.com/trezcool/wordwise/core/practice"
	"github.com/trezcool/wordwise/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errLoginInProgress      = echo.NewHTTPError(http.StatusConflict, "a login is already in progress")
	errAlreadyListening     = echo.NewHTTPError(http.StatusConflict, "already listening")
	errStoreUnavailable     = "the document store is unavailable, please try again"
)

// toHTTPError maps domain errors to their HTTP counterpart. Unknown errors are returned as is.
func toHTTPError(err error) error {
	switch errors.Cause(err) {
	case user.ErrAuthenticationFailed:
		return errAuthenticationFailed
	case user.ErrAccountDeactivated:
		return errAccountDeactivated
	case user.ErrLoginInProgress:
		return errLoginInProgress
	case user.ErrNotFound, assignment.ErrNotFound, docstore.ErrNotFound:
		return errHttpNotFound
	case assignment.ErrLoginRequired:
		return errUnauthorized
	case practice.ErrAlreadyListening:
		return errAlreadyListening
	}
	return err
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		// StoreError has a Cause: check it before unwrapping
		if docstore.IsStoreError(err) && !docstore.IsNotFound(err) {
			code = http.StatusServiceUnavailable
			message = errStoreUnavailable
			logger.Error(errStoreUnavailable, err, contextUser(ctx))
			send(ctx, code, message, err)
			return
		}

		switch origErr := errors.Cause(toHTTPError(err)).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			logger.Error(msg, errors.Wrap(err, msg), contextUser(ctx))
		}

		send(ctx, code, message, err)
	}
}

func send(ctx echo.Context, code int, message interface{}, err error) {
	if ctx.Echo().Debug && code >= http.StatusInternalServerError {
		message = err.Error()
	}
	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !ctx.Response().Committed {
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// contextUser is the user known from the token claims, for error reports.
func contextUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Name = claims.Name
		usr.Email = claims.Email
	}
	return usr
}
