package userdir

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis key layout. Users live in one hash (field = name, value = password);
// group names in a set, members in one set per group.
const (
	usersKey       = "quipd:users"
	groupsKey      = "quipd:groups"
	groupKeyPrefix = "quipd:group:"
)

// LoadRedis reads the directory from Redis at addr. Like LoadFile it runs
// once at startup; the directory does not follow later Redis writes.
func LoadRedis(ctx context.Context, addr, password string, db int) (*Directory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	defer client.Close() //nolint:errcheck

	return loadClient(ctx, client)
}

func loadClient(ctx context.Context, client *redis.Client) (*Directory, error) {
	entries, err := client.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", usersKey, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no users found at %s", usersKey)
	}

	users := make([]User, 0, len(entries))
	for name, pass := range entries {
		users = append(users, User{Name: name, Password: pass})
	}

	names, err := client.SMembers(ctx, groupsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", groupsKey, err)
	}

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		members, err := client.SMembers(ctx, groupKeyPrefix+name).Result()
		if err != nil {
			return nil, fmt.Errorf("reading group %q: %w", name, err)
		}
		groups = append(groups, Group{Name: name, Users: members})
	}

	return New(users, groups)
}
