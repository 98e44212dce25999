package dto

// UserInfo 用户公开信息（不含密码）
type UserInfo struct {
	ID         int64   `json:"id"`
	Username   string  `json:"user_name"`
	Avatar     *string `json:"avatar"`
	Bio        *string `json:"bio"`
	UserRole   string  `json:"user_role"`
	AssetCount int64   `json:"asset_count"`
	LikedCount int64   `json:"liked_count"`
}

// UserUpdateRequest 更新用户资料请求
type UserUpdateRequest struct {
	Avatar *string `json:"avatar" binding:"omitempty,max=500"`
	Bio    *string `json:"bio" binding:"omitempty,max=1000"`
}

// UserListRequest 用户列表查询参数（管理端）
type UserListRequest struct {
	Username *string `form:"username"`
	UserRole *string `form:"user_role" binding:"omitempty,oneof=user admin"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// UserListData 用户列表数据
type UserListData struct {
	Users      []UserInfo `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int64      `json:"total_pages"`
}
