package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/storefront/internal/config"
	"github.com/yourusername/storefront/internal/jobs"
	"github.com/yourusername/storefront/internal/store"
)

func setupJobs(cfg *config.Config, users store.UserStore) (*jobs.Manager, error) {
	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)
	ttlMinutes := cfg.JobExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 10
	}
	records := jobs.NewStore(redisClient, time.Duration(ttlMinutes)*time.Minute)
	return jobs.NewManager(cfg.QueueRedisURL, users, records, log.Default())
}

func taskStatusHandler(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if strings.TrimSpace(taskID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "task id is required",
			})
			return
		}

		record, err := manager.GetRecord(c.Request.Context(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to load task record",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "TASK_NOT_FOUND",
				"message": "no such task",
			})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}
