package service

import (
	"fmt"
	"os"
	"testing"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	applogger "atelier-go/pkg/logger"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	if err := applogger.Init("error", "console", "stdout", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// CommentServiceTestSuite 评论服务的数据库集成测试
// 没有可用的 PostgreSQL 时整组跳过
type CommentServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	commentService *CommentService

	author model.User
	viewer model.User
	asset  model.Asset
	other  model.Asset
}

func (s *CommentServiceTestSuite) SetupSuite() {
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
		s.T().Skipf("Skipping comment service tests: database not available (%v)", err)
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
	s.commentService = NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewCommentLikeRepository(db),
		repository.NewAssetRepository(db),
	)
}

func (s *CommentServiceTestSuite) TearDownSuite() {
	if s.db == nil {
		return
	}
	s.db.Exec("DROP TABLE IF EXISTS comment_likes, comments, assets, users CASCADE")
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func (s *CommentServiceTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM comment_likes")
	s.db.Exec("DELETE FROM comments")
	s.db.Exec("DELETE FROM assets")
	s.db.Exec("DELETE FROM users")

	s.author = model.User{UserName: "alice", Password: "hash"}
	s.Require().NoError(s.db.Create(&s.author).Error)
	s.viewer = model.User{UserName: "bob", Password: "hash"}
	s.Require().NoError(s.db.Create(&s.viewer).Error)

	s.asset = model.Asset{AuthorID: s.author.ID, Title: "晨雾", Status: model.AssetStatusPublished}
	s.Require().NoError(s.db.Create(&s.asset).Error)
	s.other = model.Asset{AuthorID: s.author.ID, Title: "暮色", Status: model.AssetStatusPublished}
	s.Require().NoError(s.db.Create(&s.other).Error)
}

func (s *CommentServiceTestSuite) createComment(userID int64, parentID *int64) *dto.CommentInfo {
	info, err := s.commentService.Create(userID, s.asset.ID, &dto.CommentCreateRequest{
		Content:  "评论内容",
		ParentID: parentID,
	})
	s.Require().NoError(err)
	return info
}

func (s *CommentServiceTestSuite) TestCreateTopLevelAndReply() {
	top := s.createComment(s.viewer.ID, nil)
	s.Nil(top.ParentID)

	reply := s.createComment(s.viewer.ID, &top.ID)
	s.Require().NotNil(reply.ParentID)
	s.Equal(top.ID, *reply.ParentID)

	var asset model.Asset
	s.Require().NoError(s.db.First(&asset, s.asset.ID).Error)
	s.Equal(int64(2), asset.CommentCount)
}

func (s *CommentServiceTestSuite) TestCreateRejectsReplyToReply() {
	top := s.createComment(s.viewer.ID, nil)
	reply := s.createComment(s.viewer.ID, &top.ID)

	_, err := s.commentService.Create(s.viewer.ID, s.asset.ID, &dto.CommentCreateRequest{
		Content:  "回复的回复",
		ParentID: &reply.ID,
	})
	s.ErrorIs(err, ErrReplyToReply)
}

func (s *CommentServiceTestSuite) TestCreateRejectsParentOfOtherAsset() {
	top := s.createComment(s.viewer.ID, nil)

	_, err := s.commentService.Create(s.viewer.ID, s.other.ID, &dto.CommentCreateRequest{
		Content:  "跨资源回复",
		ParentID: &top.ID,
	})
	s.ErrorIs(err, ErrParentAssetMismatch)
}

func (s *CommentServiceTestSuite) TestCreateRejectsMissingAsset() {
	_, err := s.commentService.Create(s.viewer.ID, 99999, &dto.CommentCreateRequest{
		Content: "评论不存在的资源",
	})
	s.ErrorIs(err, ErrAssetNotFound)
}

func (s *CommentServiceTestSuite) TestCreateRejectsMissingParent() {
	missing := int64(99999)
	_, err := s.commentService.Create(s.viewer.ID, s.asset.ID, &dto.CommentCreateRequest{
		Content:  "孤儿回复",
		ParentID: &missing,
	})
	s.ErrorIs(err, ErrParentNotFound)
}

func (s *CommentServiceTestSuite) TestUpdateMarksEdited() {
	top := s.createComment(s.viewer.ID, nil)

	updated, err := s.commentService.Update(top.ID, s.viewer.ID, &dto.CommentUpdateRequest{
		Content: "改过的内容",
	})
	s.Require().NoError(err)
	s.True(updated.Edited)
	s.Equal("改过的内容", updated.Content)

	// 非作者不能改
	_, err = s.commentService.Update(top.ID, s.author.ID, &dto.CommentUpdateRequest{
		Content: "越权修改",
	})
	s.ErrorIs(err, ErrCommentNoPermission)
}

func (s *CommentServiceTestSuite) TestDeleteCascadesRepliesAndLikes() {
	top := s.createComment(s.viewer.ID, nil)
	reply := s.createComment(s.author.ID, &top.ID)

	likeRepo := repository.NewCommentLikeRepository(s.db)
	_, err := likeRepo.Create(s.author.ID, top.ID)
	s.Require().NoError(err)
	_, err = likeRepo.Create(s.viewer.ID, reply.ID)
	s.Require().NoError(err)

	assetID, err := s.commentService.Delete(top.ID, &dto.UserInfo{ID: s.viewer.ID, UserRole: "user"})
	s.Require().NoError(err)
	s.Equal(s.asset.ID, assetID)

	var commentCount, likeCount int64
	s.db.Model(&model.Comment{}).Count(&commentCount)
	s.db.Model(&model.CommentLike{}).Count(&likeCount)
	s.Equal(int64(0), commentCount)
	s.Equal(int64(0), likeCount)

	var asset model.Asset
	s.Require().NoError(s.db.First(&asset, s.asset.ID).Error)
	s.Equal(int64(0), asset.CommentCount)
}

func (s *CommentServiceTestSuite) TestDeletePermissions() {
	top := s.createComment(s.viewer.ID, nil)

	// 其他普通用户不能删
	_, err := s.commentService.Delete(top.ID, &dto.UserInfo{ID: s.author.ID, UserRole: "user"})
	s.ErrorIs(err, ErrCommentNoPermission)

	// 管理员可以删任何人的评论
	_, err = s.commentService.Delete(top.ID, &dto.UserInfo{ID: s.author.ID, UserRole: "admin"})
	s.NoError(err)
}

func (s *CommentServiceTestSuite) TestListByAssetAttachesViewerState() {
	top := s.createComment(s.viewer.ID, nil)
	s.createComment(s.author.ID, &top.ID)

	likeRepo := repository.NewCommentLikeRepository(s.db)
	_, err := likeRepo.Create(s.viewer.ID, top.ID)
	s.Require().NoError(err)

	data, err := s.commentService.ListByAsset(s.asset.ID, nil, s.viewer.ID, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(data.Comments, 1) // 只有顶层评论
	s.True(data.Comments[0].ViewerLiked)
	s.Equal(int64(1), data.Comments[0].RepliesCount)
}

func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
