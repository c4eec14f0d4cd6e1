package request

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// UUIDParam parses a path parameter as a UUID.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(name)))
}

// QueryBool parses an optional boolean query value. Unparsable values are ignored.
func QueryBool(c *gin.Context, name string) *bool {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// QueryMoney parses an optional monetary query value. Unparsable values are ignored.
func QueryMoney(c *gin.Context, name string) *types.Money {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil
	}
	parsed, err := types.NewMoneyFromString(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// QueryUUID parses an optional UUID query value.
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
