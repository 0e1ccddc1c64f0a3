package catalogdto

// CategoryCreateInput đầu vào tạo danh mục khóa học
type CategoryCreateInput struct {
	Name        string `json:"name" validate:"required,no_xss" maxLength:"100"`
	Description string `json:"description,omitempty"`
}

// CategoryUpdateInput đầu vào cập nhật danh mục
type CategoryUpdateInput struct {
	Name        string `json:"name,omitempty" validate:"omitempty,no_xss" maxLength:"100"`
	Description string `json:"description,omitempty"`
}
