package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const openTasksKey = "tasks:open"

// TaskLocator keeps a GEO index of open tasks, so "tasks near me" is a
// single GEOSEARCH instead of a table scan.
type TaskLocator struct {
	rdb *redis.Client
}

func NewTaskLocator(rdb *redis.Client) *TaskLocator {
	return &TaskLocator{rdb: rdb}
}

func taskMember(taskID int) string {
	return fmt.Sprintf("task:%d", taskID)
}

func parseTaskMember(member string) (int, error) {
	parts := strings.Split(member, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid member %q", member)
	}
	return strconv.Atoi(parts[1])
}

// Add indexes the task's position. Re-adding moves the member, so
// updates go through the same call.
func (l *TaskLocator) Add(ctx context.Context, taskID int, lon, lat float64) error {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("locator add: invalid coords lon=%.8f lat=%.8f", lon, lat)
	}
	return l.rdb.GeoAdd(ctx, openTasksKey, &redis.GeoLocation{
		Name:      taskMember(taskID),
		Longitude: lon,
		Latitude:  lat,
	}).Err()
}

func (l *TaskLocator) Remove(ctx context.Context, taskID int) error {
	return l.rdb.ZRem(ctx, openTasksKey, taskMember(taskID)).Err()
}

// Nearby returns task IDs within the radius, nearest first.
func (l *TaskLocator) Nearby(ctx context.Context, lon, lat, radiusKM float64) ([]int, error) {
	res, err := l.rdb.GeoSearchLocation(ctx, openTasksKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusKM,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      100,
		},
		WithDist: true,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]int, 0, len(res))
	for _, item := range res {
		id, err := parseTaskMember(item.Name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
