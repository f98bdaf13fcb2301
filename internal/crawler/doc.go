/*
Package crawler duyệt site gacsach và ghi snapshot JSON xuống đĩa.

1. Thứ tự duyệt

- CrawlCategories: trang chủ, lấy menu thể loại, ghi all_categories.json
- CrawlCategoryBooks: mỗi thể loại đọc lần lượt trang 0, ?page=1, ?page=2...
  Dừng khi trang không còn dòng sách, không còn nút trang sau, hoặc chạm PageLimit.
  Kết quả ghi vào books_<slug>.json
- CrawlContent: đọc các file books_*.json, chọn file, sách theo khoảng đã cấu hình,
  lấy trang chi tiết sách rồi lấy từng chương

2. Giới hạn tốc độ

Mọi request chạy tuần tự, luôn chỉ một request tại một thời điểm.
Giữa hai chương, hai sách, hai trang danh mục crawler nghỉ một khoảng cố định (Pacer).

3. Lỗi

Lỗi khi tải hoặc bóc tách một trang chỉ được log và đếm, crawler chuyển sang mục tiếp theo.
Chỉ lỗi khi khởi tạo hoặc khi không đọc được thư mục đầu vào mới làm dừng lần chạy.
Huỷ context (Ctrl+C) được kiểm tra giữa các mục.
*/
package crawler
