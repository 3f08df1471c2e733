package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/sirupsen/logrus"
)

const reportLockTTL = 30 * time.Second

// RedisReportLocker takes a per-report Redis lock. It does not wait: a held lock
// is reported as utils.ErrorReportLocked.
type RedisReportLocker struct {
	client func() *redislock.Client
	ttl    time.Duration
}

func NewRedisReportLocker() *RedisReportLocker {
	return &RedisReportLocker{client: config.GetRedisLock, ttl: reportLockTTL}
}

func (l *RedisReportLocker) Lock(ctx context.Context, key string) (func(), error) {
	logger := config.GetLogger()
	locker := l.client()
	if locker == nil {
		// Redis connects after the server starts listening.
		logger.WithFields(logrus.Fields{"field": "RedisReportLocker", "key": key}).
			Warn("redis lock not ready; proceeding without lock")
		return func() {}, nil
	}

	lock, err := locker.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, utils.ErrorReportLocked
	} else if err != nil {
		config.LogError(logger, "reportLock.go", "Lock", "Obtain", key, err)
		return nil, err
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{"field": "RedisReportLocker", "key": key}).
				Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}, nil
}
