package response

import (
	"math"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope:
//
//	{"status": "success", "data": ..., "message": ...}
//	{"status": "error", "message": ..., "error": {"code": ...}}
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"status": "success",
		"data":   data,
	})
}

func SuccessWithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"status":  "error",
		"message": message,
		"error": gin.H{
			"code": code,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"status":  "error",
		"message": message,
		"error": gin.H{
			"code":    code,
			"details": details,
		},
	})
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, totalItems int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(limit)))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNext:     page < totalPages,
		HasPrev:     page > 1 && totalItems > 0,
	}
}

// Paginated wraps a list payload with pagination metadata.
func Paginated(c *gin.Context, statusCode int, items interface{}, p Pagination) {
	c.JSON(statusCode, gin.H{
		"status": "success",
		"data": gin.H{
			"items":      items,
			"pagination": p,
		},
	})
}
