package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/middleware"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

const dateLayout = "2006-01-02"

// operatorName is the display name written to attended_by and receipts. Empty on
// anonymous requests.
func operatorName(c *gin.Context) string {
	claims := middleware.OperatorFromContext(c)
	if claims == nil {
		return ""
	}
	if claims.Name != "" {
		return claims.Name
	}
	return claims.UserID
}

func serviceTypeParam(c *gin.Context) (models.ServiceType, error) {
	st, err := models.ParseServiceType(c.Param("serviceType"))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unknown service type")
	}
	return st, nil
}

// subscriptionRef reads ?id= or ?number= from the query string.
func subscriptionRef(c *gin.Context) (service.SubscriptionRef, error) {
	ref := service.SubscriptionRef{ID: strings.TrimSpace(c.Query("id"))}
	if raw := strings.TrimSpace(c.Query("number")); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			return ref, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "number must be an integer")
		}
		ref.Number = &number
	}
	if ref.ID == "" && ref.Number == nil {
		return ref, appErrors.Clone(appErrors.ErrValidation, "number or id is required")
	}
	return ref, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}

// dateRange parses ?from=&to= as inclusive calendar days.
func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "from must use YYYY-MM-DD")
		}
		from = &day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "to must use YYYY-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

func boolQuery(c *gin.Context, key string) *bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func bindError(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload")
}
