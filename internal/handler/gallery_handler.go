package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Choices returns the records of a content type that may own a gallery.
// Routed behind middleware.AjaxRequired.
func (a *API) Choices(c *gin.Context) {
	contentTypeID, err := parseUintParam(c, "content_type_id")
	if err != nil {
		respondError(c, http.StatusNotFound, "内容类型不存在")
		return
	}

	choices, err := a.galleries.Choices(c.Request.Context(), contentTypeID)
	if err != nil {
		respondGalleryError(c, err, "获取候选对象失败")
		return
	}

	c.JSON(http.StatusOK, choices)
}

// GalleryData returns the ordered images of one content object.
// Routed behind middleware.AjaxRequired.
func (a *API) GalleryData(c *gin.Context) {
	objectID, err := parseUintParam(c, "object_id")
	if err != nil || objectID == 0 {
		respondError(c, http.StatusNotFound, "内容对象不存在")
		return
	}

	images, err := a.galleries.GalleryData(c.Request.Context(), c.Param("app_label"), c.Param("content_type"), objectID)
	if err != nil {
		respondGalleryError(c, err, "获取图集失败")
		return
	}

	c.JSON(http.StatusOK, images)
}
