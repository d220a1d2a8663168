package handler

import (
	"errors"
	"net/http"

	"github.com/contentgallery/internal/testapp"
	"github.com/gin-gonic/gin"
)

type catPayload struct {
	Name  string `json:"name"`
	About string `json:"about"`
	Age   *int   `json:"age"`
	Sex   string `json:"sex"`
}

func (p catPayload) toInput() testapp.CatInput {
	return testapp.CatInput{
		Name:  p.Name,
		About: p.About,
		Age:   p.Age,
		Sex:   p.Sex,
	}
}

// ListCats returns all cats.
func (a *API) ListCats(c *gin.Context) {
	items, err := a.cats.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "获取列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCat creates a new cat.
func (a *API) CreateCat(c *gin.Context) {
	var payload catPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.cats.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, testapp.ErrCatNameMissing):
			respondError(c, http.StatusBadRequest, "名称不能为空")
		case errors.Is(err, testapp.ErrCatSexInvalid):
			respondError(c, http.StatusBadRequest, "性别无效")
		case errors.Is(err, testapp.ErrCatAgeInvalid):
			respondError(c, http.StatusBadRequest, "年龄无效")
		default:
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "创建失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": translate(c, "已创建"), "item": item})
}

// DeleteCat removes a cat and its images.
func (a *API) DeleteCat(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的ID")
		return
	}

	if err := a.cats.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, testapp.ErrCatNotFound):
			respondError(c, http.StatusNotFound, "记录不存在")
		default:
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "删除失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": translate(c, "已删除")})
}
