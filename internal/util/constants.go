package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageSQLite = "sqlite"
	StorageMySQL  = "mysql"
	StorageRedis  = "redis"
)

// 面向用户的默认提示
const (
	MsgPlanCreated       = "Learning plan created successfully!"
	MsgPlanDeleted       = "Learning plan deleted."
	MsgLoadDashboard     = "Failed to load dashboard data"
	MsgSessionExpired    = "token expired or invalid"
	MsgDailyNotAvailable = "Daily content is not available yet. Generate the week first."
)
