package i18n

// Translations holds every user-facing string, grouped by area
type Translations struct {
	Errors struct {
		ConfigNotFound   string
		InputRequired    string
		ExtractionFailed string
		AccessDenied     string
		ClipboardEmpty   string
		DownloadFailed   string
		NoCandidates     string
	}
	Notice struct {
		Extracted       string
		Pasted          string
		Copied          string
		Preparing       string
		DownloadDone    string
		OpenedInBrowser string
	}
	Thumbs struct {
		Probing   string
		Retrieved string
		Master    string
		Pending   string
		Invalid   string
		NoneValid string
	}
	TUI struct {
		Placeholder string
		Help        string
		Loading     string
	}
}

var en = func() *Translations {
	t := &Translations{}
	t.Errors.ConfigNotFound = "Config file not found"
	t.Errors.InputRequired = "Sequence required"
	t.Errors.ExtractionFailed = "Invalid URL"
	t.Errors.AccessDenied = "Access denied"
	t.Errors.ClipboardEmpty = "Nothing to paste"
	t.Errors.DownloadFailed = "Download failed"
	t.Errors.NoCandidates = "No thumbnails to act on"

	t.Notice.Extracted = "Video found"
	t.Notice.Pasted = "Pasted from clipboard"
	t.Notice.Copied = "URL copied"
	t.Notice.Preparing = "Preparing download..."
	t.Notice.DownloadDone = "Download successful"
	t.Notice.OpenedInBrowser = "Opened in browser"

	t.Thumbs.Probing = "Checking thumbnails"
	t.Thumbs.Retrieved = "Assets retrieved"
	t.Thumbs.Master = "MASTER"
	t.Thumbs.Pending = "pending"
	t.Thumbs.Invalid = "placeholder"
	t.Thumbs.NoneValid = "No valid HD assets found for this ID."

	t.TUI.Placeholder = "Paste a YouTube link..."
	t.TUI.Help = "enter extract • ctrl+v paste • ↑/↓ select • d download • c copy • o open • / edit • esc clear • ctrl+c quit"
	t.TUI.Loading = "Extracting"
	return t
}()

var zh = func() *Translations {
	t := &Translations{}
	t.Errors.ConfigNotFound = "未找到配置文件"
	t.Errors.InputRequired = "请输入链接"
	t.Errors.ExtractionFailed = "无效的链接"
	t.Errors.AccessDenied = "无法访问剪贴板"
	t.Errors.ClipboardEmpty = "剪贴板为空"
	t.Errors.DownloadFailed = "下载失败"
	t.Errors.NoCandidates = "没有可操作的封面"

	t.Notice.Extracted = "已找到视频"
	t.Notice.Pasted = "已从剪贴板粘贴"
	t.Notice.Copied = "链接已复制"
	t.Notice.Preparing = "准备下载..."
	t.Notice.DownloadDone = "下载成功"
	t.Notice.OpenedInBrowser = "已在浏览器中打开"

	t.Thumbs.Probing = "正在检查封面"
	t.Thumbs.Retrieved = "已获取封面"
	t.Thumbs.Master = "主图"
	t.Thumbs.Pending = "加载中"
	t.Thumbs.Invalid = "占位图"
	t.Thumbs.NoneValid = "该视频没有可用的高清封面。"

	t.TUI.Placeholder = "粘贴 YouTube 链接..."
	t.TUI.Help = "enter 提取 • ctrl+v 粘贴 • ↑/↓ 选择 • d 下载 • c 复制 • o 打开 • / 编辑 • esc 清空 • ctrl+c 退出"
	t.TUI.Loading = "提取中"
	return t
}()

// T returns the translation table for lang, falling back to English
func T(lang string) *Translations {
	switch lang {
	case "zh", "zh-CN", "zh-TW", "zh_CN", "zh_TW":
		return zh
	default:
		return en
	}
}
