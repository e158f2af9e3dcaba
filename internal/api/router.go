package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/api/handler"
	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type Router struct {
	authHandler      *handler.AuthHandler
	companyHandler   *handler.CompanyHandler
	teamHandler      *handler.TeamHandler
	leadHandler      *handler.LeadHandler
	clientHandler    *handler.ClientHandler
	callHandler      *handler.CallHandler
	analysisHandler  *handler.AnalysisHandler
	dashboardHandler *handler.DashboardHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	teamHandler *handler.TeamHandler,
	leadHandler *handler.LeadHandler,
	clientHandler *handler.ClientHandler,
	callHandler *handler.CallHandler,
	analysisHandler *handler.AnalysisHandler,
	dashboardHandler *handler.DashboardHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		companyHandler:   companyHandler,
		teamHandler:      teamHandler,
		leadHandler:      leadHandler,
		clientHandler:    clientHandler,
		callHandler:      callHandler,
		analysisHandler:  analysisHandler,
		dashboardHandler: dashboardHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/forgot-password", r.authHandler.ForgotPassword)
			auth.POST("/reset-password", r.authHandler.ResetPassword)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 外部分析服务回调，不走登录态
		api.POST("/analyses/result", r.analysisHandler.Result)

		// 需要认证的接口
		authed := api.Group("")
		authed.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 仪表盘
			authed.GET("/dashboard", r.dashboardHandler.Summary)

			// 线索
			leads := authed.Group("/leads")
			{
				leads.GET("", r.leadHandler.List)
				leads.POST("", r.leadHandler.Create)
				leads.PUT("/:id", r.leadHandler.Update)
				leads.DELETE("/:id", r.leadHandler.Delete)
				leads.GET("/:id/calls", r.callHandler.ListByLead)
			}

			// 通话
			calls := authed.Group("/calls")
			{
				calls.GET("", r.callHandler.List)
				calls.POST("", r.callHandler.Create)
				calls.PUT("/:id", r.callHandler.Update)
				calls.DELETE("/:id", r.callHandler.Delete)
				calls.POST("/:id/recording", r.callHandler.UploadRecording)
				calls.GET("/:id/recording-url", r.callHandler.RecordingURL)
			}

			// 分析
			analyses := authed.Group("/analyses")
			{
				analyses.POST("", r.analysisHandler.Submit)
				analyses.GET("/:id", r.analysisHandler.Get)
				analyses.GET("/:id/status", r.analysisHandler.Status)
				analyses.POST("/:id/retry", r.analysisHandler.Retry)
			}

			// 分配类操作管理员和经理可用
			managing := authed.Group("")
			managing.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
			{
				managing.POST("/leads/:id/assign", r.leadHandler.Assign)
				managing.POST("/leads/:id/unassign", r.leadHandler.Unassign)
				managing.POST("/leads/import", r.leadHandler.Import)

				groups := managing.Group("/lead-groups")
				{
					groups.GET("", r.leadHandler.ListGroups)
					groups.POST("", r.leadHandler.CreateGroup)
					groups.POST("/:id/assign", r.leadHandler.AssignGroup)
					groups.DELETE("/:id", r.leadHandler.DeleteGroup)
				}

				clients := managing.Group("/clients")
				{
					clients.GET("", r.clientHandler.List)
					clients.POST("", r.clientHandler.Create)
					clients.PUT("/:id", r.clientHandler.Update)
					clients.DELETE("/:id", r.clientHandler.Delete)
				}

				jobs := managing.Group("/jobs")
				{
					jobs.GET("", r.clientHandler.ListJobs)
					jobs.POST("", r.clientHandler.CreateJob)
					jobs.PUT("/:id", r.clientHandler.UpdateJob)
					jobs.DELETE("/:id", r.clientHandler.DeleteJob)
				}
			}

			// 公司与团队只有管理员能动
			admin := authed.Group("")
			admin.Use(middleware.RequireRole(model.RoleAdmin))
			{
				company := admin.Group("/company")
				{
					company.GET("", r.companyHandler.Get)
					company.PUT("", r.companyHandler.UpdateInfo)
					company.PUT("/settings", r.companyHandler.UpdateSettings)
					company.PUT("/profile", r.companyHandler.UpdateProfile)
					company.PUT("/password", r.companyHandler.UpdatePassword)
					company.POST("/phone-numbers", r.companyHandler.AddPhoneNumber)
					company.DELETE("/phone-numbers/:id", r.companyHandler.RemovePhoneNumber)
				}

				team := admin.Group("/team")
				{
					team.GET("", r.teamHandler.Get)
					team.POST("/managers", r.teamHandler.CreateManager)
					team.POST("/employees", r.teamHandler.CreateEmployee)
					team.PUT("/managers/:id", r.teamHandler.UpdateManager)
					team.PUT("/employees/:id", r.teamHandler.UpdateEmployee)
					team.DELETE("/managers/:id", r.teamHandler.DeleteManager)
					team.DELETE("/employees/:id", r.teamHandler.DeleteEmployee)
				}
			}
		}
	}

	return engine
}
