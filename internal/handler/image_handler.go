package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/contentgallery/internal/service"
	"github.com/gin-gonic/gin"
)

type positionPayload struct {
	Position *int `json:"position" binding:"required"`
}

type reorderPayload struct {
	ContentTypeID uint   `json:"content_type_id" binding:"required"`
	ObjectID      uint   `json:"object_id" binding:"required"`
	IDs           []uint `json:"ids"`
}

// ListContentTypes returns the registered owner types for the admin widget.
func (a *API) ListContentTypes(c *gin.Context) {
	items, err := a.galleries.ContentTypes(c.Request.Context())
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "获取内容类型失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListImages returns the images of an owner given as query parameters.
func (a *API) ListImages(c *gin.Context) {
	contentTypeID, err := parseUint(c.Query("content_type_id"), "content_type_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容类型ID")
		return
	}
	objectID, err := parseUint(c.Query("object_id"), "object_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的对象ID")
		return
	}

	items, err := a.galleries.ListImages(c.Request.Context(), contentTypeID, objectID)
	if err != nil {
		respondGalleryError(c, err, "获取图片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// multipartOverhead covers form fields and part headers around the image.
const multipartOverhead = 64 << 10

// UploadImage stores a multipart image and attaches it to an owner.
func (a *API) UploadImage(c *gin.Context) {
	maxBytes := a.galleries.MaxBytes()
	if maxBytes > 0 {
		limit := maxBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			respondError(c, http.StatusRequestEntityTooLarge, "图片文件过大")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if _, err := c.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "图片文件过大")
			return
		}
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	contentTypeID, err := parseUint(c.PostForm("content_type_id"), "content_type_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容类型ID")
		return
	}
	objectID, err := parseUint(c.PostForm("object_id"), "object_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的对象ID")
		return
	}

	var position *int
	if raw := strings.TrimSpace(c.PostForm("position")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "图片位置无效")
			return
		}
		position = &parsed
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}
	if maxBytes > 0 && file.Size > maxBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "图片文件过大")
		return
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "读取图片失败")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "读取图片失败")
		return
	}

	item, err := a.galleries.AddImage(c.Request.Context(), service.ImageInput{
		ContentTypeID: contentTypeID,
		ObjectID:      objectID,
		Position:      position,
		Filename:      file.Filename,
		Data:          data,
	})
	if err != nil {
		respondGalleryError(c, err, "保存图片失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": translate(c, "图片已上传"), "item": item})
}

// UpdateImagePosition moves one image.
func (a *API) UpdateImagePosition(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的图片ID")
		return
	}

	var payload positionPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.galleries.UpdatePosition(c.Request.Context(), id, *payload.Position)
	if err != nil {
		respondGalleryError(c, err, "更新图片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": translate(c, "图片已更新"), "item": item})
}

// ReorderImages rewrites the positions of all images of an owner.
func (a *API) ReorderImages(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	items, err := a.galleries.Reorder(c.Request.Context(), payload.ContentTypeID, payload.ObjectID, payload.IDs)
	if err != nil {
		respondGalleryError(c, err, "图片排序失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": translate(c, "排序已保存"), "items": items})
}

// DeleteImage removes one image.
func (a *API) DeleteImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的图片ID")
		return
	}

	if err := a.galleries.DeleteImage(c.Request.Context(), id); err != nil {
		respondGalleryError(c, err, "删除图片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": translate(c, "图片已删除")})
}
