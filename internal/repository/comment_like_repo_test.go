package repository

import (
	"fmt"
	"os"
	"testing"

	"atelier-go/internal/model"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CommentLikeRepoTestSuite 评论点赞仓储的数据库集成测试
// 没有可用的 PostgreSQL 时整组跳过
type CommentLikeRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	likeRepo    *CommentLikeRepository
	commentRepo *CommentRepository

	user    model.User
	other   model.User
	comment model.Comment
	second  model.Comment
}

func (s *CommentLikeRepoTestSuite) SetupSuite() {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "atelier_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		s.T().Skipf("Skipping repository tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Asset{},
		&model.Comment{},
		&model.CommentLike{},
	)
	s.Require().NoError(err)

	s.db = db
	s.likeRepo = NewCommentLikeRepository(db)
	s.commentRepo = NewCommentRepository(db)
}

func (s *CommentLikeRepoTestSuite) TearDownSuite() {
	if s.db == nil {
		return
	}
	s.db.Exec("DROP TABLE IF EXISTS comment_likes, comments, assets, users CASCADE")
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func (s *CommentLikeRepoTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM comment_likes")
	s.db.Exec("DELETE FROM comments")
	s.db.Exec("DELETE FROM assets")
	s.db.Exec("DELETE FROM users")

	s.user = model.User{UserName: "alice", Password: "hash"}
	s.Require().NoError(s.db.Create(&s.user).Error)
	s.other = model.User{UserName: "bob", Password: "hash"}
	s.Require().NoError(s.db.Create(&s.other).Error)

	asset := model.Asset{AuthorID: s.user.ID, Title: "晨雾", Status: model.AssetStatusPublished}
	s.Require().NoError(s.db.Create(&asset).Error)

	s.comment = model.Comment{UserID: s.user.ID, AssetID: asset.ID, Content: "好看"}
	s.Require().NoError(s.db.Create(&s.comment).Error)
	s.second = model.Comment{UserID: s.other.ID, AssetID: asset.ID, Content: "收藏了"}
	s.Require().NoError(s.db.Create(&s.second).Error)
}

func (s *CommentLikeRepoTestSuite) TestCreateIsIdempotent() {
	created, err := s.likeRepo.Create(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	s.True(created)

	// 唯一索引冲突不报错，返回 false
	created, err = s.likeRepo.Create(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	s.False(created)

	count, err := s.likeRepo.CountByComment(s.comment.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *CommentLikeRepoTestSuite) TestDeleteMissingIsNoop() {
	deleted, err := s.likeRepo.Delete(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	s.False(deleted)

	_, err = s.likeRepo.Create(s.user.ID, s.comment.ID)
	s.Require().NoError(err)

	deleted, err = s.likeRepo.Delete(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	s.True(deleted)
}

func (s *CommentLikeRepoTestSuite) TestCountByComments() {
	_, err := s.likeRepo.Create(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	_, err = s.likeRepo.Create(s.other.ID, s.comment.ID)
	s.Require().NoError(err)
	_, err = s.likeRepo.Create(s.user.ID, s.second.ID)
	s.Require().NoError(err)

	counts, err := s.likeRepo.CountByComments([]int64{s.comment.ID, s.second.ID, 99999})
	s.Require().NoError(err)
	s.Equal(int64(2), counts[s.comment.ID])
	s.Equal(int64(1), counts[s.second.ID])
	s.Equal(int64(0), counts[99999])
}

func (s *CommentLikeRepoTestSuite) TestBatchCheckLiked() {
	_, err := s.likeRepo.Create(s.user.ID, s.second.ID)
	s.Require().NoError(err)

	liked, err := s.likeRepo.BatchCheckLiked(s.user.ID, []int64{s.comment.ID, s.second.ID})
	s.Require().NoError(err)
	s.False(liked[s.comment.ID])
	s.True(liked[s.second.ID])
}

func (s *CommentLikeRepoTestSuite) TestDeleteByComments() {
	_, err := s.likeRepo.Create(s.user.ID, s.comment.ID)
	s.Require().NoError(err)
	_, err = s.likeRepo.Create(s.other.ID, s.second.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.likeRepo.DeleteByComments([]int64{s.comment.ID, s.second.ID}))

	count, err := s.likeRepo.CountByComment(s.comment.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *CommentLikeRepoTestSuite) TestSetLikeCountPersistsAuthoritativeValue() {
	s.Require().NoError(s.commentRepo.SetLikeCount(s.comment.ID, 10))

	var got model.Comment
	s.Require().NoError(s.db.First(&got, s.comment.ID).Error)
	s.Equal(int64(10), got.LikeCount)
}

func TestCommentLikeRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CommentLikeRepoTestSuite))
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
