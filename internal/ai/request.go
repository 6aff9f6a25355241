package ai

// Modality 响应模态
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// ParseModalities 把配置里的模态字符串转成 Modality 列表，未知值忽略
func ParseModalities(values []string) []Modality {
	var out []Modality
	for _, v := range values {
		switch Modality(v) {
		case ModalityText, ModalityImage:
			out = append(out, Modality(v))
		}
	}
	if len(out) == 0 {
		out = []Modality{ModalityText}
	}
	return out
}

// Part 带角色标注的内容片段
type Part struct {
	Role string // model.RoleUser / model.RoleAssistant
	Text string
}

// Request 一次生成请求
// Parts 按时间顺序排列：上下文窗口在前，新的用户提问恒为最后一项。
type Request struct {
	Parts      []Part
	Modalities []Modality
}

// LastUserText 最后一个 user 片段的文本（即本轮提问）
func (r *Request) LastUserText() string {
	for i := len(r.Parts) - 1; i >= 0; i-- {
		if r.Parts[i].Role == "user" {
			return r.Parts[i].Text
		}
	}
	return ""
}

// wantsImage 请求是否包含图片模态
func (r *Request) wantsImage() bool {
	for _, m := range r.Modalities {
		if m == ModalityImage {
			return true
		}
	}
	return false
}

// wantsText 请求是否包含文本模态
func (r *Request) wantsText() bool {
	for _, m := range r.Modalities {
		if m == ModalityText {
			return true
		}
	}
	return false
}
