package domain

// AccountView 帳戶對外的唯讀投影
// 與 Account 實體完全脫鉤，取得後不會再隨實體變動
type AccountView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Funds string `json:"funds"`
}
