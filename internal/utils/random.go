package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/shopspring/decimal"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
}

var locations = []string{"Clinic North", "Clinic South", "Head Office", ""}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// 管理员占少数
func GenerateRandomRole() domain.Role {
	if rand.Intn(5) == 0 {
		return domain.RoleManager
	}
	return domain.RoleEmployee
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, p := range pinyinArray {
		length := rand.Intn(len(p)) + 1
		username += p[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(organizationID int64, password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		OrganizationID: organizationID,
		Username:       username,
		PasswordHash:   string(passwordHash),
		FullName:       fullName,
		Email:          username + "@" + emailDomainName,
		Role:           GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

// 为每个工作日生成一个以整点或半点开始、持续 2~8 小时的空闲时间段
func GenerateRandomAvailabilityWindows(user *domain.User) []*domain.AvailabilityWindow {
	windows := make([]*domain.AvailabilityWindow, 0, 5)

	for weekday := int32(1); weekday <= 5; weekday++ {
		if rand.Intn(4) == 0 {
			continue
		}

		start := (7*2 + rand.Intn(6)) * 1800 // 07:00 ~ 09:30
		end := start + (rand.Intn(7)+2)*3600

		windows = append(windows, &domain.AvailabilityWindow{
			UserID:    user.ID,
			Weekday:   weekday,
			StartTime: FormatClock(start),
			EndTime:   FormatClock(end),
			Location:  locations[rand.Intn(len(locations))],
		})
	}

	return windows
}

// 生成最近 30 天内的一条随机记录
func GenerateRandomEntry(kind domain.EntryKind, user *domain.User) *domain.ApprovableEntry {
	entry := &domain.ApprovableEntry{
		Kind:           kind,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Date:           time.Now().AddDate(0, 0, -rand.Intn(30)).Truncate(24 * time.Hour),
	}

	switch kind {
	case domain.EntryKindTime:
		entry.Description = "工时记录"
		entry.SetQuantity(decimal.NewFromInt(int64(rand.Intn(16)+1) * 30))
	case domain.EntryKindTrip:
		entry.Description = "出行记录"
		entry.SetQuantity(decimal.New(int64(rand.Intn(5000)+10), -1))
	case domain.EntryKindExpense:
		entry.Description = "报销记录"
		entry.SetQuantity(decimal.New(int64(rand.Intn(20000)+100), -2))
	}

	return entry
}
