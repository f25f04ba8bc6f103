package http

import (
	"net/http"
	"time"

	"TutorHub/internal/config"
	jwtMiddleware "TutorHub/internal/middleware/jwt"
	accessService "TutorHub/internal/modules/access/application/service"
	adminService "TutorHub/internal/modules/admin/application/service"
	adminPersistence "TutorHub/internal/modules/admin/infrastructure/persistence"
	adminHandler "TutorHub/internal/modules/admin/interface/http"
	agentService "TutorHub/internal/modules/agent/application/service"
	agentPersistence "TutorHub/internal/modules/agent/infrastructure/persistence"
	agentHandler "TutorHub/internal/modules/agent/interface/http"
	cardService "TutorHub/internal/modules/card/application/service"
	"TutorHub/internal/modules/card/infrastructure/feishu"
	cardPersistence "TutorHub/internal/modules/card/infrastructure/persistence"
	cardHandler "TutorHub/internal/modules/card/interface/http"
	chatService "TutorHub/internal/modules/chat/application/service"
	chatPersistence "TutorHub/internal/modules/chat/infrastructure/persistence"
	"TutorHub/internal/modules/chat/infrastructure/provider"
	chatHandler "TutorHub/internal/modules/chat/interface/http"
	userService "TutorHub/internal/modules/user/application/service"
	userPersistence "TutorHub/internal/modules/user/infrastructure/persistence"
	userHandler "TutorHub/internal/modules/user/interface/http"
	"TutorHub/pkg/mq"
	"TutorHub/pkg/ssl"
	"TutorHub/pkg/util/myjwt"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由依赖的外部资源，由 main 负责创建与关闭
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Publisher mq.Publisher
}

// NewRouter 组装各模块并注册路由
func NewRouter(deps Deps) *gin.Engine {
	conf := deps.Config
	publisher := deps.Publisher
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}

	GE := gin.New()
	// token 只允许出现在 websocket 握手的查询串里，访问日志不记录查询串
	GE.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipQueryString: true}), gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.SecureHandler(ssl.Options{
		SSLRedirect: conf.SecureConfig.SSLRedirect,
		SSLHost:     conf.SecureConfig.SSLHost,
		Development: gin.Mode() == gin.DebugMode,
	}))

	signer := myjwt.NewSigner(conf.JwtConfig.Key, conf.JwtConfig.ExpireHours, conf.JwtConfig.Issuer)
	access := accessService.NewAccessService()

	userRepo := userPersistence.NewUserInfoRepository(deps.DB)
	agentRepo := agentPersistence.NewAgentRepository(deps.DB)
	webCardRepo := cardPersistence.NewWebCardRepository(deps.DB)
	feishuCardRepo := cardPersistence.NewFeishuCardRepository(deps.DB)
	modelRepo := adminPersistence.NewModelRepository(deps.DB)
	cityRepo := adminPersistence.NewCityRepository(deps.DB)
	departmentRepo := adminPersistence.NewDepartmentRepository(deps.DB)
	historyRepo := chatPersistence.NewHistoryRepository(deps.DB)

	feishuClient := feishu.NewClient(feishu.Config{
		BaseURL:       conf.FeishuConfig.BaseURL,
		RefreshMargin: time.Duration(conf.FeishuConfig.TokenRefreshMarginSeconds) * time.Second,
		HTTPClient:    &http.Client{Timeout: time.Duration(conf.FeishuConfig.TimeoutSeconds) * time.Second},
	})
	dispatcher := provider.NewDispatcher(provider.Config{
		Timeout:            time.Duration(conf.ChatConfig.TimeoutSeconds) * time.Second,
		VendorHistoryLimit: conf.ChatConfig.VendorHistoryLimit,
	})

	identitySvc := userService.NewIdentityService(userRepo, signer)
	userSvc := userService.NewUserInfoService(userRepo, signer, conf.AuthConfig.InvitationCode)
	agentSvc := agentService.NewAgentService(agentRepo, modelRepo, access)
	webCardSvc := cardService.NewWebCardService(webCardRepo, access)
	feishuCardSvc := cardService.NewFeishuCardService(feishuCardRepo, feishuClient, access)
	userAdminSvc := adminService.NewUserAdminService(userRepo, access)
	dictionarySvc := adminService.NewDictionaryService(cityRepo, departmentRepo, access)
	modelSvc := adminService.NewModelService(modelRepo, access)
	chatSvc := chatService.NewChatService(agentRepo, modelRepo, historyRepo, access, dispatcher, publisher, chatService.Options{
		DefaultMaxTokens:   conf.ChatConfig.DefaultMaxTokens,
		DefaultTemperature: conf.ChatConfig.DefaultTemperature,
		EventTopic:         conf.KafkaConfig.ChatEventTopic,
		EventTimeout:       time.Duration(conf.KafkaConfig.PublishTimeoutMs) * time.Millisecond,
	})

	userH := userHandler.NewUserInfoHandler(userSvc)
	agentH := agentHandler.NewAgentHandler(agentSvc)
	webCardH := cardHandler.NewWebCardHandler(webCardSvc)
	feishuCardH := cardHandler.NewFeishuCardHandler(feishuCardSvc)
	adminH := adminHandler.NewAdminHandler(userAdminSvc, dictionarySvc, modelSvc)
	chatH := chatHandler.NewChatHandler(chatSvc)
	wsH := chatHandler.NewWsHandler(chatSvc)

	GE.POST("/login", userH.Login)
	GE.POST("/register", userH.Register)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth(identitySvc))
	authed.POST("/user/getUserInfo", userH.GetUserInfo)
	authed.POST("/user/updateUserInfo", userH.UpdateUserInfo)
	authed.POST("/user/changePassword", userH.ChangePassword)
	authed.POST("/user/logout", userH.Logout)

	authed.POST("/agent/list", agentH.List)
	authed.POST("/agent/adminList", agentH.AdminList)
	authed.POST("/agent/detail", agentH.Detail)
	authed.POST("/agent/create", agentH.Create)
	authed.POST("/agent/update", agentH.Update)
	authed.POST("/agent/delete", agentH.Delete)

	authed.POST("/webCard/list", webCardH.List)
	authed.POST("/webCard/adminList", webCardH.AdminList)
	authed.POST("/webCard/detail", webCardH.Detail)
	authed.POST("/webCard/create", webCardH.Create)
	authed.POST("/webCard/update", webCardH.Update)
	authed.POST("/webCard/delete", webCardH.Delete)

	authed.POST("/feishuCard/list", feishuCardH.List)
	authed.POST("/feishuCard/adminList", feishuCardH.AdminList)
	authed.POST("/feishuCard/detail", feishuCardH.Detail)
	authed.POST("/feishuCard/create", feishuCardH.Create)
	authed.POST("/feishuCard/update", feishuCardH.Update)
	authed.POST("/feishuCard/delete", feishuCardH.Delete)
	authed.POST("/feishuCard/fetchTableData", feishuCardH.FetchTableData)
	authed.POST("/feishuCard/getTableFields", feishuCardH.GetTableFields)

	authed.POST("/admin/getUserList", adminH.ListUsers)
	authed.POST("/admin/updateUser", adminH.UpdateUser)
	authed.POST("/admin/resetPassword", adminH.ResetPassword)
	authed.POST("/admin/getCityList", adminH.ListCities)
	authed.POST("/admin/createCity", adminH.CreateCity)
	authed.POST("/admin/updateCity", adminH.UpdateCity)
	authed.POST("/admin/deleteCity", adminH.DeleteCity)
	authed.POST("/admin/getDepartmentList", adminH.ListDepartments)
	authed.POST("/admin/createDepartment", adminH.CreateDepartment)
	authed.POST("/admin/updateDepartment", adminH.UpdateDepartment)
	authed.POST("/admin/deleteDepartment", adminH.DeleteDepartment)
	authed.POST("/admin/getModelList", adminH.ListModels)
	authed.POST("/admin/createModel", adminH.CreateModel)
	authed.POST("/admin/updateModel", adminH.UpdateModel)
	authed.POST("/admin/deleteModel", adminH.DeleteModel)

	authed.POST("/chat/sendMessage", chatH.SendMessage)
	authed.POST("/chat/stream", chatH.Stream)
	authed.POST("/chat/getHistory", chatH.GetHistory)
	authed.POST("/chat/deleteHistory", chatH.DeleteHistory)

	GE.GET("/chat/ws", jwtMiddleware.AuthQuery(identitySvc), wsH.Connect)

	return GE
}
