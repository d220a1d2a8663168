package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/contentgallery/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": translate(c, message)})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUint(raw, key string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	return parseUint(c.Param(key), key)
}

// respondGalleryError maps gallery service errors onto HTTP statuses.
// Unknown errors are attached to the context for the request logger.
func respondGalleryError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrContentTypeNotFound),
		errors.Is(err, service.ErrContentTypeNotEligible):
		respondError(c, http.StatusNotFound, "内容类型不存在")
	case errors.Is(err, service.ErrContentTypeHidden):
		respondError(c, http.StatusForbidden, "该内容类型不可选择")
	case errors.Is(err, service.ErrObjectNotFound):
		respondError(c, http.StatusNotFound, "内容对象不存在")
	case errors.Is(err, service.ErrImageNotFound):
		respondError(c, http.StatusNotFound, "图片不存在")
	case errors.Is(err, service.ErrImageInvalid):
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
	case errors.Is(err, service.ErrImageTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "图片文件过大")
	case errors.Is(err, service.ErrPositionInvalid):
		respondError(c, http.StatusBadRequest, "图片位置无效")
	case errors.Is(err, service.ErrReorderMismatch):
		respondError(c, http.StatusBadRequest, "排序列表与图片不匹配")
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
