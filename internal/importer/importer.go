package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/utils"
)

var requiredColumns = []string{"username", "weekday", "starttime", "endtime"}

// ErrInvalidFile 表示文件本身无法导入，具体原因附在错误信息中
var ErrInvalidFile = errors.New("文件格式错误")

type Store interface {
	GetUsersByOrganization(ctx context.Context, organizationID int64) ([]*domain.User, error)
	ReplaceAvailabilityWindows(ctx context.Context, windowsByUser map[int64][]*domain.AvailabilityWindow) error
}

type Skipped struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	BatchID         string    `json:"batchID"`
	ImportedUsers   int       `json:"importedUsers"`
	ImportedWindows int       `json:"importedWindows"`
	Skipped         []Skipped `json:"skipped"`
}

// ImportAvailability 从 CSV 导入组织内员工的每周空闲时间
//
// CSV 第一行必须是表头，列名不区分大小写：username, weekday, startTime, endTime，可选 location。
// 不合法的行和未知的用户名会被跳过并记录原因；出现在文件中的每个用户的空闲时间会被整体替换，
// 文件中没有出现的用户保持不变。替换在一个事务中完成，失败时不会修改任何用户。
func ImportAvailability(ctx context.Context, store Store, organizationID int64, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: 文件为空", ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: 缺少列 %s", ErrInvalidFile, name)
		}
	}

	users, err := store.GetUsersByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	usersByName := make(map[string]*domain.User, len(users))
	for _, u := range users {
		usersByName[strings.ToLower(u.Username)] = u
	}

	result := &Result{
		BatchID: uuid.NewString(),
		Skipped: make([]Skipped, 0),
	}

	// 按用户分组
	grouped := make(map[int64][]*domain.AvailabilityWindow)
	seen := make(map[string]bool)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped = append(result.Skipped, Skipped{Line: parseErr.Line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		user, ok := usersByName[strings.ToLower(field("username"))]
		if !ok {
			result.Skipped = append(result.Skipped, Skipped{Line: line, Reason: fmt.Sprintf("用户 %q 不存在", field("username"))})
			continue
		}

		weekday, err := strconv.ParseInt(field("weekday"), 10, 32)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Line: line, Reason: "星期格式错误"})
			continue
		}

		w := &domain.AvailabilityWindow{
			UserID:    user.ID,
			Weekday:   int32(weekday),
			StartTime: field("starttime"),
			EndTime:   field("endtime"),
			Location:  field("location"),
		}
		if err := utils.ValidateWindowTime(w); err != nil {
			result.Skipped = append(result.Skipped, Skipped{Line: line, Reason: err.Error()})
			continue
		}

		// 完全相同的行只导入一次
		key := fmt.Sprintf("%d|%d|%s|%s|%s", w.UserID, w.Weekday, w.StartTime, w.EndTime, strings.ToLower(w.Location))
		if seen[key] {
			continue
		}
		seen[key] = true

		grouped[user.ID] = append(grouped[user.ID], w)
	}

	// 所有用户在同一个事务中替换，任何一个失败都不会修改数据
	if len(grouped) > 0 {
		if err := store.ReplaceAvailabilityWindows(ctx, grouped); err != nil {
			return nil, err
		}
	}
	for _, windows := range grouped {
		result.ImportedUsers++
		result.ImportedWindows += len(windows)
	}

	return result, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
