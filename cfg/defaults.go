package cfg

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Tên tác giả dùng khi bản ghi sách không có tác giả
	DefaultAuthor = "Không xác định"

	// Mô tả mặc định khi không crawl được excerpt đủ dài
	DefaultExcerpt = "Cuốn sách này mang đến cho bạn đọc những góc nhìn sâu sắc và đầy cảm hứng. Tác giả đã khéo léo dẫn dắt người đọc qua từng trang sách với lối viết cuốn hút và nội dung đầy tính thực tiễn. Đây không chỉ là một tác phẩm đáng đọc mà còn là nguồn tri thức quý giá, giúp bạn mở rộng tầm nhìn và có thêm nhiều góc nhìn mới về cuộc sống. Hãy đồng hành cùng tác giả trong hành trình khám phá những giá trị sâu sắc được gửi gắm trong từng chương sách."
)
