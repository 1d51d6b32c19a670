package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/artemcheb722/MANProject/middleware"
	"github.com/artemcheb722/MANProject/search"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// parseListParams reads the listing query parameters and rejects requests that
// violate the boundary contract (page >= 1, 1 <= limit <= 50).
func parseListParams(ctx *gin.Context) (search.Params, bool) {
	p := search.Params{
		Query:      strings.TrimSpace(ctx.Query("q")),
		SortBy:     strings.TrimSpace(ctx.Query("sort_by")),
		SortDir:    strings.TrimSpace(ctx.Query("order_direction")),
		ExactMatch: ctx.Query("use_sharp_q_filter") == "true",
	}
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, "invalid page")
			return p, false
		}
		p.Page = n
	}
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid limit")
			return p, false
		}
		p.Limit = n
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
		return p, false
	}
	return p, true
}

// uploadFormFile streams one multipart file into object storage under the
// entity's UUID and returns its public URL.
func uploadFormFile(ctx *gin.Context, uploader storage.Uploader, entityUUID string, header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	key := storage.ObjectKey(entityUUID, header.Filename)
	return uploader.Upload(ctx.Request.Context(), key, header.Header.Get("Content-Type"), f)
}

// isDuplicateErr recognizes unique-constraint violations from the database.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
