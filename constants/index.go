package constants

const (
	ROLE_ADMIN = "ROLE_ADMIN"
	ROLE_SALE  = "ROLE_SALE"
	ROLE_USER  = "ROLE_USER"
)

const (
	ERROR_INTERNAL_ERROR       = "Lỗi hệ thống, vui lòng thử lại sau"
	ERROR_PARSE_DATA_TO_LOCALS = "Không đọc được dữ liệu từ request"
	ERROR_CREATE               = "Tạo mới thất bại"
	ERROR_EDIT                 = "Cập nhật thất bại"
	ERROR_INPUT                = "Dữ liệu không hợp lệ"

	MISSING_LOGIN_INPUT = "Thiếu email hoặc mật khẩu"
	INVALID_EMAIL       = "Email không tồn tại"
	INVALID_PASSWORD    = "Mật khẩu không đúng"
	ACCOUNT_NOT_ACTIVE  = "Tài khoản chưa được kích hoạt"
	EMAIL_EXISTS        = "Email đã tồn tại"

	CAN_NOT_HASH_PASSWORD = "Không thể mã hóa mật khẩu"
	NOT_FOUND_RECORDS     = "Không tìm thấy dữ liệu"
	NOT_ADMIN             = "Không có quyền truy cập"

	DATA_INPUT_IS_NOT_NUMBER = "Tham số phải là số"
)
