package errors

import (
	"net/http"
)

func BadRequest() Enricher   { return WithCode(http.StatusBadRequest) }
func Unauthorized() Enricher { return WithCode(http.StatusUnauthorized) }
func Forbidden() Enricher    { return WithCode(http.StatusForbidden) }
func NotFound() Enricher     { return WithCode(http.StatusNotFound) }
func Conflict() Enricher     { return WithCode(http.StatusConflict) }
