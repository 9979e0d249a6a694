package httpcontroller

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/errors"
)

// goJSONSerializer is echo's JSON serializer backed by goccy/go-json.
type goJSONSerializer struct{}

// Serialize encodes i into the response.
func (goJSONSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize decodes the request body into i.
func (goJSONSerializer) Deserialize(c echo.Context, i any) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unmarshal type error: field="+typeErr.Field).SetInternal(err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return echo.NewHTTPError(http.StatusBadRequest, "Syntax error: "+syntaxErr.Error()).SetInternal(err)
	}
	return err
}
