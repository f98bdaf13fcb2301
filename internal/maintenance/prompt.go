package maintenance

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// AskRestore hỏi người dùng có muốn phục hồi từ file backup không. Chỉ "y"/"yes" là đồng ý.
func AskRestore(in io.Reader, out io.Writer, backupFile string) bool {
	fmt.Fprintf(out, "Bạn có muốn phục hồi dữ liệu từ file backup %s? (y/N): ", backupFile)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// PromptRestore hỏi rồi phục hồi nếu người dùng đồng ý
func (m *Maintainer) PromptRestore(ctx context.Context, in io.Reader, out io.Writer, backupFile string) (bool, error) {
	if backupFile == "" || !AskRestore(in, out, backupFile) {
		return false, nil
	}
	if _, err := m.Restore(ctx, backupFile); err != nil {
		return false, err
	}
	return true, nil
}
