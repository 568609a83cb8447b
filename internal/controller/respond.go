package controller

import (
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondView 操作结束后统一返回最新视图；错误时视图中带有提示信息
func respondView(ctx *gin.Context, dashboard *service.DashboardService, err error) {
	view := dashboard.View()
	// 调用方已断开时后端请求仍在后台完成，这里只回当前视图
	if err == nil || errors.Is(err, util.ErrStaleResult) || errors.Is(err, context.Canceled) {
		util.Success(ctx, view)
		return
	}

	var rejected *service.GoalRejectedError
	switch {
	case errors.As(err, &rejected):
		util.Error(ctx, http.StatusUnprocessableEntity, rejected.Reason, view)
	case errors.Is(err, util.ErrNotAuthenticated):
		util.Error(ctx, http.StatusUnauthorized, "Unauthorized", view)
	case errors.Is(err, util.ErrPlanNotFound),
		errors.Is(err, util.ErrWeekNotFound),
		errors.Is(err, util.ErrDayNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error(), view)
	case errors.Is(err, util.ErrNoPlanSelected),
		errors.Is(err, util.ErrNoWeekSelected):
		util.Error(ctx, http.StatusConflict, err.Error(), view)
	default:
		if status, ok := gatewayStatus(err); ok {
			util.Error(ctx, status, messageFor(view, err), view)
			return
		}
		util.LogInternalError(ctx, err)
	}
}

// respondAck 认证类接口只返回提示信息
func respondAck(ctx *gin.Context, message string, err error) {
	if err == nil {
		util.Success(ctx, gin.H{"message": message})
		return
	}
	if status, ok := gatewayStatus(err); ok {
		util.Error(ctx, status, gateway.Message(err, "Request failed"), nil)
		return
	}
	util.LogInternalError(ctx, err)
}

// gatewayStatus 后端的 4xx 原样透传，其余归为网关错误
func gatewayStatus(err error) (int, bool) {
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		return 0, false
	}
	switch ge.Kind {
	case gateway.KindUnauthorized:
		return http.StatusUnauthorized, true
	case gateway.KindNotGenerated:
		return http.StatusNotFound, true
	case gateway.KindTimeout:
		return http.StatusGatewayTimeout, true
	case gateway.KindServer:
		if ge.Status >= 400 && ge.Status < 500 {
			return ge.Status, true
		}
	}
	return http.StatusBadGateway, true
}

func messageFor(view service.ViewState, err error) string {
	if view.Error != "" {
		return view.Error
	}
	return gateway.Message(err, "Request failed")
}

func intParam(ctx *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(ctx.Param(name))
	if err != nil || n <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return n, true
}
