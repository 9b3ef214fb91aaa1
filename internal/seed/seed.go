package seed

import (
	"fmt"
	"strings"

	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/provider"
	"github.com/fith/sugar/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options 演示数据规模
type Options struct {
	Seed        int64
	Users       int
	Categories  int
	Discussions int
	Replies     int
	// TrustedEvery 每隔多少个分类生成一个可信分类，0 表示不生成
	TrustedEvery int
}

// Result 写入统计
type Result struct {
	Users       int
	Categories  int
	Discussions int
	Posts       int
}

// Seeder 通过业务服务写入演示数据，计数与可信标记走正常路径
type Seeder struct {
	container *provider.Container
	faker     *gofakeit.Faker
	title     cases.Caser
}

// New 创建种子数据生成器
func New(c *provider.Container, seed int64) *Seeder {
	return &Seeder{
		container: c,
		faker:     gofakeit.New(seed),
		title:     cases.Title(language.English),
	}
}

// Run 生成用户、分类、讨论与回复
func (s *Seeder) Run(opts Options) (*Result, error) {
	result := &Result{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(s.faker.Username()), s.faker.Number(100, 999))
		user, err := s.container.UserService.EnsureUser(username, s.faker.Name())
		if err != nil {
			return result, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	result.Users = len(users)
	if len(users) == 0 {
		return result, nil
	}

	categories := make([]*models.Category, 0, opts.Categories)
	for i := 0; i < opts.Categories; i++ {
		trusted := opts.TrustedEvery > 0 && (i+1)%opts.TrustedEvery == 0
		category, err := s.container.CategoryService.Create(service.CategoryInput{
			Name:        s.title.String(s.faker.Word() + " " + s.faker.Word()),
			Description: s.faker.Sentence(8),
			Trusted:     &trusted,
		})
		if err != nil {
			return result, fmt.Errorf("seed category: %w", err)
		}
		categories = append(categories, category)
	}
	result.Categories = len(categories)
	if len(categories) == 0 {
		return result, nil
	}

	// 可信分类需要可信用户发帖，第一个用户提升为可信
	trusted := true
	poster, err := s.container.UserService.SetFlags(users[0].ID, service.UserFlagsInput{Trusted: &trusted})
	if err != nil {
		return result, fmt.Errorf("seed trusted user: %w", err)
	}
	users[0] = poster

	for i := 0; i < opts.Discussions; i++ {
		category := categories[i%len(categories)]
		author := users[s.faker.Number(0, len(users)-1)]
		if category.Trusted {
			author = users[0]
		}
		discussion, err := s.container.DiscussionService.Create(author, service.CreateDiscussionInput{
			Title:      strings.TrimSuffix(s.faker.Sentence(5), "."),
			CategoryID: category.ID,
			Body:       s.faker.Paragraph(2, 3, 8, "\n\n"),
			NSFW:       s.faker.Number(1, 20) == 1,
		})
		if err != nil {
			return result, fmt.Errorf("seed discussion: %w", err)
		}
		result.Discussions++
		result.Posts++

		for j := 0; j < opts.Replies; j++ {
			replier := users[s.faker.Number(0, len(users)-1)]
			if category.Trusted {
				replier = users[0]
			}
			if _, err := s.container.PostService.Reply(replier, discussion.ID, s.faker.Paragraph(1, 2, 10, "\n")); err != nil {
				return result, fmt.Errorf("seed reply: %w", err)
			}
			result.Posts++
		}
	}

	logger.Named("seed").Infow("seed_completed",
		"users", result.Users,
		"categories", result.Categories,
		"discussions", result.Discussions,
		"posts", result.Posts,
	)
	return result, nil
}
