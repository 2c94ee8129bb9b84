package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/importer"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/middlewares"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine) {
	store := importer.NewStore()

	r.POST("/auth/login", loginHandler)

	authed := r.Group("/", middlewares.RequireAuth())
	{
		authed.POST("/auth/users", middlewares.RequireRole(string(models.UserRoleAdmin)), createUserHandler)

		authed.GET("/business-types", listBusinessTypesHandler)
		authed.POST("/business-types", createBusinessTypeHandler)

		authed.GET("/businesses", searchBusinessesHandler)
		authed.POST("/businesses", createBusinessHandler)
		authed.GET("/businesses/:id", getBusinessHandler)
		authed.GET("/businesses/:id/check-ins", listCheckInsHandler)
		authed.GET("/businesses/:id/cases", listCasesHandler)

		authed.POST("/check-ins", createCheckInHandler)
		authed.GET("/check-ins/:id", getCheckInHandler)

		authed.GET("/cases/:id", getCaseHandler)
		authed.POST("/cases/:id/decision", decideCaseHandler)
		authed.POST("/cases/:id/resolution-papers", uploadResolutionPaperHandler)

		authed.POST("/imports/upload", uploadImportFileHandler)
		authed.POST("/imports/preview", previewImportHandler)
		authed.POST("/imports", createImportJobHandler)
		authed.GET("/imports", listImportJobsHandler)
		authed.GET("/imports/:id", getImportJobHandler)
		authed.POST("/imports/:id/process", processImportJobHandler(store))
		authed.POST("/imports/:id/retry", retryImportJobHandler(store))

		authed.GET("/reviews", listReviewsHandler)
		authed.POST("/reviews/:id/decision", decideReviewHandler)
		authed.POST("/reviews/bulk-decision", bulkDecideReviewsHandler)

		authed.GET("/notifications", listNotificationsHandler)
		authed.POST("/notifications/:id/read", markNotificationReadHandler)

		authed.GET("/audit", middlewares.RequireRole(string(models.UserRoleSupervisor), string(models.UserRoleAdmin)), listAuditLogsHandler)
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrReviewAlreadyDecided),
		errors.Is(err, models.ErrInvalidCaseState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func loginHandler(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	token, user, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func listBusinessTypesHandler(c *gin.Context) {
	types, err := models.GetBusinessTypeAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func createBusinessTypeHandler(c *gin.Context) {
	var input models.NewBusinessType
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	businessType, err := models.CreateBusinessType(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, businessType)
}

func searchBusinessesHandler(c *gin.Context) {
	name := utils.NilIfEmpty(c.Query("name"))
	district := utils.NilIfEmpty(c.Query("district"))
	businesses, err := models.SearchBusinesses(c.Request.Context(), name, district)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}

func createBusinessHandler(c *gin.Context) {
	var input models.NewBusiness
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	business, err := models.CreateBusiness(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, business)
}

func getBusinessHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	business, err := models.GetBusiness(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

func listCheckInsHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	checkIns, err := models.GetCheckInsByBusiness(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkIns)
}

func listCasesHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	cases, err := models.GetCasesByBusiness(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

func createCheckInHandler(c *gin.Context) {
	var input models.NewCheckIn
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	checkIn, err := models.CreateCheckIn(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkIn)
}

func getCheckInHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	checkIn, err := models.GetCheckIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkIn)
}

func getCaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	caseFile, err := models.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caseFile)
}

func decideCaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewCaseDecision
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	caseFile, err := models.DecideCase(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caseFile)
}

func previewImportHandler(c *gin.Context) {
	var input struct {
		FileName  string `json:"file_name" binding:"required"`
		ObjectKey string `json:"object_key"`
		FileURL   string `json:"file_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	objectKey := resolveObjectKey(input.ObjectKey, input.FileURL)
	if objectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object_key or a recognizable file_url is required"})
		return
	}
	preview, err := importer.PreviewFile(c.Request.Context(), input.FileName, objectKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// resolveObjectKey accepts either the staged object key or a full storage
// URL pasted from the console.
func resolveObjectKey(objectKey string, fileURL string) string {
	if objectKey != "" {
		return objectKey
	}
	return utils.ExtractObjectKeyFromURL(fileURL)
}

func createImportJobHandler(c *gin.Context) {
	var input models.NewImportJob
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if input.ObjectKey == "" && input.FileURL != "" {
		input.ObjectKey = utils.ExtractObjectKeyFromURL(input.FileURL)
	}
	job, err := models.CreateImportJob(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func listImportJobsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	jobs, err := models.ListImportJobs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func getImportJobHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	job, err := models.GetImportJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job":      job,
		"progress": models.ProgressPercent(job.ProcessedRows, job.TotalRows),
	})
}

func processImportJobHandler(store importer.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		ctx, span := tracer.Start(c.Request.Context(), "import.process")
		defer span.End()
		if err := importer.StartProcess(ctx, store, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
	}
}

func retryImportJobHandler(store importer.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		clone, err := models.CloneImportJobForRetry(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := importer.StartProcess(c.Request.Context(), store, clone.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "processing", "job_id": clone.ID})
	}
}

func listReviewsHandler(c *gin.Context) {
	var importJobId *int
	if raw := c.Query("import_job_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import_job_id"})
			return
		}
		importJobId = &id
	}
	var status *models.ReviewStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ReviewStatus(raw)
		status = &s
	}
	reviews, err := models.ListDuplicateReviews(c.Request.Context(), importJobId, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func decideReviewHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input struct {
		Resolution models.ReviewResolution `json:"resolution" binding:"required"`
		Notes      string                  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	result, err := models.DecideDuplicateReview(c.Request.Context(), id, input.Resolution, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bulkDecideReviewsHandler(c *gin.Context) {
	var input struct {
		Ids        []int                   `json:"ids" binding:"required"`
		Resolution models.ReviewResolution `json:"resolution" binding:"required"`
		Notes      string                  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	results := models.BulkDecideDuplicateReviews(c.Request.Context(), input.Ids, input.Resolution, input.Notes)
	c.JSON(http.StatusOK, results)
}

func listNotificationsHandler(c *gin.Context) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	unreadOnly := c.Query("unread") == "true"
	notifications, err := models.ListNotifications(c.Request.Context(), userId, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func markNotificationReadHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	if err := models.MarkNotificationRead(c.Request.Context(), id, userId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listAuditLogsHandler(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityId, _ := strconv.Atoi(c.Query("entity_id"))
	if entityType == "" || entityId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_type and entity_id are required"})
		return
	}
	logs, err := models.ListAuditLogs(c.Request.Context(), entityType, entityId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
