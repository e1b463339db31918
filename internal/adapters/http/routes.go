package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the event and task routes on api
func RegisterRoutes(api *echo.Group, events *EventHandler, tasks *TaskHandler) {
	eventRoutes := api.Group("/events")
	eventRoutes.GET("", events.ListEvents)
	eventRoutes.GET("/summary", events.Summary)
	eventRoutes.GET("/:id", events.GetEvent)
	eventRoutes.POST("", events.CreateEvent)
	eventRoutes.PUT("/:id", events.UpdateEvent)
	eventRoutes.PATCH("/:id", events.UpdateEvent)
	eventRoutes.PATCH("/:id/status", events.AdvanceStatus)
	eventRoutes.DELETE("/:id", events.DeleteEvent)
	eventRoutes.DELETE("", events.DeleteAllEvents)

	taskRoutes := api.Group("/tasks")
	taskRoutes.GET("", tasks.ListTasks)
	taskRoutes.GET("/:id", tasks.GetTask)
	taskRoutes.POST("", tasks.CreateTask)
	taskRoutes.PUT("/:id", tasks.UpdateTask)
	taskRoutes.PATCH("/:id/toggle", tasks.ToggleTask)
	taskRoutes.DELETE("/:id", tasks.DeleteTask)
	taskRoutes.DELETE("", tasks.DeleteAllTasks)
}
