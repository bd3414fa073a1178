package routes

import (
	"encoding/json"
	"net/http"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreatePostInput struct {
	Content  string   `json:"content" validate:"required,max=5000"`
	Images   []string `json:"images"`
	Mentions []uint   `json:"mentions"`
}

// CreatePost publishes an update with optional image attachments and
// @mentions. Mentioned users are notified.
func CreatePost(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input CreatePostInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	imageURLs := uploadImages(input.Images)
	imagesJSON, _ := json.Marshal(imageURLs)
	mentionsJSON, _ := json.Marshal(input.Mentions)

	post := models.Post{
		UserID:   claims.ID,
		Content:  input.Content,
		Images:   string(imagesJSON),
		Mentions: datatypes.JSON(mentionsJSON),
	}

	if err := storage.DB.Create(&post).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	for _, mentionedID := range input.Mentions {
		notifier.Notify(mentionedID, claims.ID, models.NotificationTypeMention,
			"mentioned you in a post", "post", &post.ID)
	}

	ctx.JSON(iris.Map{"success": true, "post": post})
}

// GetFeed returns recent posts, newest first, with derived like/comment
// counts and whether the caller liked each.
func GetFeed(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	limit := ctx.URLParamIntDefault("limit", 20)
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := ctx.URLParamIntDefault("offset", 0)

	var posts []models.Post
	if err := storage.DB.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	for i := range posts {
		storage.DB.Model(&models.PostLike{}).Where("post_id = ?", posts[i].ID).Count(&posts[i].LikeCount)
		storage.DB.Model(&models.PostComment{}).Where("post_id = ?", posts[i].ID).Count(&posts[i].CommentCount)

		var mine int64
		storage.DB.Model(&models.PostLike{}).
			Where("post_id = ? AND user_id = ?", posts[i].ID, claims.ID).Count(&mine)
		posts[i].LikedByMe = mine > 0
	}

	ctx.JSON(iris.Map{"success": true, "posts": posts})
}

// DeletePost removes the caller's own post with its comments and likes.
func DeletePost(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	postID := ctx.Params().Get("id")

	var post models.Post
	if err := storage.DB.Where("id = ? AND user_id = ?", postID, claims.ID).
		First(&post).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Post not found"})
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	deleteUploadedImages(post.Images)

	ctx.JSON(iris.Map{"success": true, "message": "Post deleted successfully"})
}

// LikePost is idempotent: liking an already-liked post changes nothing.
func LikePost(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	postID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := storage.DB.First(&post, postID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	like := models.PostLike{PostID: postID, UserID: claims.ID}
	result := storage.DB.
		Where("post_id = ? AND user_id = ?", postID, claims.ID).
		FirstOrCreate(&like)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifier.Notify(post.UserID, claims.ID, models.NotificationTypeLike,
		"liked your post", "post", &post.ID)

	ctx.JSON(iris.Map{"success": true})
}

func UnlikePost(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	postID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if err := storage.DB.
		Where("post_id = ? AND user_id = ?", postID, claims.ID).
		Delete(&models.PostLike{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

type CreateCommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func CommentOnPost(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	postID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input CreateCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var post models.Post
	if err := storage.DB.First(&post, postID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	comment := models.PostComment{
		PostID:  postID,
		UserID:  claims.ID,
		Content: input.Content,
	}
	if err := storage.DB.Create(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifier.Notify(post.UserID, claims.ID, models.NotificationTypeComment,
		"commented on your post", "post", &post.ID)

	ctx.JSON(iris.Map{"success": true, "comment": comment})
}

// DeleteComment removes a comment. The commenter and the post's author may
// both delete it.
func DeleteComment(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	commentID, err := ctx.Params().GetUint("commentID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var comment models.PostComment
	if err := storage.DB.First(&comment, commentID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var post models.Post
	if err := storage.DB.First(&post, comment.PostID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if comment.UserID != claims.ID && post.UserID != claims.ID {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	if err := storage.DB.Delete(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

func GetComments(ctx iris.Context) {
	postID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	comments := []models.PostComment{}
	storage.DB.
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments)

	ctx.JSON(iris.Map{"success": true, "comments": comments})
}
