package model

import (
	"derma-detect/backend/common"

	"github.com/burugo/thing"
	redisCache "github.com/burugo/thing/drivers/cache/redis"
	"github.com/burugo/thing/drivers/db/sqlite"
)

// InitDB configures the ORM, migrates the schema and initializes the model
// handles. Call after common.InitRedisClient so the cache client can attach.
func InitDB() error {
	dbAdapter, err := sqlite.NewSQLiteAdapter(common.SQLitePath)
	if err != nil {
		return err
	}
	var cacheClient thing.CacheClient
	if common.RedisEnabled && common.RDB != nil {
		cacheClient, err = redisCache.NewClient(common.RDB, nil)
		if err != nil {
			return err
		}
	}
	thing.Configure(dbAdapter, cacheClient)

	if err := thing.AutoMigrate(&User{}, &Image{}); err != nil {
		return err
	}

	if err := UserInit(); err != nil {
		return err
	}
	if err := ImageInit(); err != nil {
		return err
	}

	return createAdminAccountIfNeed()
}

// createAdminAccountIfNeed seeds an initial admin so a fresh install is
// usable.
func createAdminAccountIfNeed() error {
	users, err := UserDB.Order("id ASC").Fetch(0, 1)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	common.SysLog("no user exists, creating an initial admin: email is admin@localhost, password is 123456")
	hashedPassword, err := common.Password2Hash("123456")
	if err != nil {
		return err
	}
	return UserDB.Save(&User{
		Email:       "admin@localhost",
		Password:    hashedPassword,
		DisplayName: "Admin",
		Role:        RoleAdminUser,
		Status:      UserStatusEnabled,
	})
}

func CloseDB() error {
	// The ORM does not hold resources that need an explicit close.
	return nil
}
