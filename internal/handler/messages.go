package handler

import (
	"github.com/contentgallery/internal/locale"
	"github.com/gin-gonic/gin"
)

var englishMessages = map[string]string{
	"会话保存失败":     "Failed to save session",
	"保存图片失败":     "Failed to save image",
	"内容对象不存在":    "Object not found",
	"内容类型不存在":    "Content type not found",
	"创建失败":       "Failed to create",
	"删除图片失败":     "Failed to delete image",
	"删除失败":       "Failed to delete",
	"只允许上传图片文件":  "Only image files are allowed",
	"名称不能为空":     "Name is required",
	"图片不存在":      "Image not found",
	"图片位置无效":     "Invalid image position",
	"图片已上传":      "Image uploaded",
	"图片已删除":      "Image deleted",
	"图片已更新":      "Image updated",
	"图片排序失败":     "Failed to reorder images",
	"图片文件过大":     "Image file is too large",
	"已创建":        "Created",
	"已删除":        "Deleted",
	"已退出登录":      "Logged out",
	"年龄无效":       "Invalid age",
	"性别无效":       "Invalid sex",
	"排序列表与图片不匹配": "Order does not match the gallery images",
	"排序已保存":      "Order saved",
	"无效的ID":      "Invalid ID",
	"无效的内容类型ID":  "Invalid content type ID",
	"无效的图片ID":    "Invalid image ID",
	"无效的对象ID":    "Invalid object ID",
	"更新图片失败":     "Failed to update image",
	"未找到上传的图片":   "No uploaded image found",
	"用户名或密码错误":   "Invalid username or password",
	"登录失败":       "Login failed",
	"登录成功":       "Logged in",
	"获取候选对象失败":   "Failed to load choices",
	"获取内容类型失败":   "Failed to load content types",
	"获取列表失败":     "Failed to load list",
	"获取图片失败":     "Failed to load images",
	"获取图集失败":     "Failed to load gallery",
	"记录不存在":      "Record not found",
	"该内容类型不可选择":  "Content type is not selectable",
	"请先登录":       "Please log in first",
	"请求参数不合法":    "Invalid request parameters",
	"请输入用户名和密码":  "Username and password are required",
	"读取图片失败":     "Failed to read image",
}

// translate returns message in the request language. Messages are keyed by their Chinese text.
func translate(c *gin.Context, message string) string {
	return locale.Pick(locale.FromRequest(c.Request), englishMessages[message], message)
}
