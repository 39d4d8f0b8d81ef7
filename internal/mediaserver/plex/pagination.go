package plex

import "context"

const defaultPageSize = 100

// fetchAll pages through a listing until the reported total is reached.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, int, error),
	pageSize int,
) ([]T, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []T
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(all) >= total || len(items) == 0 {
			break
		}
		offset += pageSize
	}

	return all, nil
}
