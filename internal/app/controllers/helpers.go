package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// actorFrom builds the calling identity from the JWT claims
func actorFrom(ctx *gin.Context) services.Actor {
	return services.Actor{
		UserID: middleware.CurrentUserID(ctx),
		Role:   middleware.CurrentRole(ctx),
	}
}

// parentParam parses :parentId and rejects parents asking about someone else
func parentParam(ctx *gin.Context) (int64, bool) {
	parentID, ok := middleware.ParseIDParam(ctx, "parentId")
	if !ok {
		return 0, false
	}
	actor := actorFrom(ctx)
	if actor.IsParent() && actor.UserID != parentID {
		middleware.RespondWithError(ctx, http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("Parents can only access their own data"))
		return 0, false
	}
	return parentID, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(http.StatusOK, "", data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(http.StatusCreated, "", data))
}
