package generation

// JobKind 生成任务类型
type JobKind string

const (
	JobKindTextToVideo  JobKind = "txt2vid"   // 文生视频
	JobKindImageToVideo JobKind = "img2vid"   // 图生视频
	JobKindVideoToAnime JobKind = "vid2anime" // 视频转动画风格
	JobKindStoryScene   JobKind = "story"     // 故事场景
)

// String 返回类型的字符串表示
func (k JobKind) String() string {
	return string(k)
}

// JobStatus 任务生命周期状态
// 只允许单向推进: queued → submitted → processing → completed/failed
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"     // 已入队
	JobStatusSubmitted  JobStatus = "submitted"  // 已提交厂商
	JobStatusProcessing JobStatus = "processing" // 厂商处理中
	JobStatusCompleted  JobStatus = "completed"  // 已完成
	JobStatusFailed     JobStatus = "failed"     // 失败
)

// String 返回状态的字符串表示
func (s JobStatus) String() string {
	return string(s)
}

// Terminal 是否终态
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// MergeStatus 故事合成状态
type MergeStatus string

const (
	MergeStatusNotStarted MergeStatus = "not_started" // 未开始
	MergeStatusMerging    MergeStatus = "merging"     // 合成中
	MergeStatusCompleted  MergeStatus = "completed"   // 已完成
	MergeStatusFailed     MergeStatus = "failed"      // 失败
)

// String 返回状态的字符串表示
func (s MergeStatus) String() string {
	return string(s)
}

// StoryMode 故事生成模式
type StoryMode string

const (
	StoryModeIndependent StoryMode = "independent" // 场景相互独立
	StoryModeCoherent    StoryMode = "coherent"    // 连贯模式，场景之间接力参考帧
)

// String 返回模式的字符串表示
func (m StoryMode) String() string {
	return string(m)
}
