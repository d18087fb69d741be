// common.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error returned by a handler or middleware in
// the standard error envelope. Stacks are included outside production.
func ErrorHandler(production bool, logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var (
			apiErr   *types.APIError
			fiberErr *fiber.Error
		)
		switch {
		case errors.As(err, &apiErr):
			// classified
		case errors.As(err, &fiberErr):
			apiErr = types.NewAPIError(fiberErr.Code, fiberErr.Message, "")
		default:
			apiErr = types.Internal("Internal server error", err)
		}

		if apiErr.StatusCode >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		stack := ""
		if !production {
			stack = apiErr.Stack()
		}
		return utils.ErrorResponse(c, apiErr.Message, apiErr.StatusCode, apiErr.Type, stack)
	}
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

// queryMap collects the query string; repeated keys keep the first value.
func queryMap(c *fiber.Ctx) map[string]string {
	out := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if _, seen := out[k]; !seen {
			out[k] = string(value)
		}
	})
	return out
}

// paramID parses a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.BadRequest("Invalid " + name)
	}
	return uint(id), nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// parseBody decodes a JSON body, or the text fields of a multipart form,
// into dest. Form values are all strings; the destination types accept
// numbers, booleans and nested JSON given as strings.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return types.BadRequest("Invalid multipart form")
		}
		values := make(map[string]string, len(form.Value))
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return types.Internal("Error reading form", err)
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return types.BadRequest("Invalid input: " + err.Error())
		}
		return nil
	}

	if len(c.Body()) == 0 {
		return types.BadRequest("Request body is required")
	}
	if err := c.BodyParser(dest); err != nil {
		return types.BadRequest("Invalid input")
	}
	return nil
}
