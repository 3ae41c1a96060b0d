// пакет model служит для представления используемых моделей приложения
package model

import "time"

// режимы переадресации
const (
	ModeRedirect = "redirect"
	ModeProxy    = "proxy"
)

// Rule правило переадресации входящих запросов
type Rule struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	KeepQuery bool   `json:"keepQuery"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// RulesDocument документ с правилами, хранящийся в файле
type RulesDocument struct {
	Rules []Rule `json:"rules"`
}

// LogEntry запись журнала запросов. используется в двух журналах:
// в журнале обращений заполняются Path и IsRandom,
// в журнале переадресаций - SourcePath, TargetURL, ForwardMode, RuleName, RuleID и ErrorMessage
type LogEntry struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Method       string            `json:"method"`
	Path         string            `json:"path,omitempty"`
	SourcePath   string            `json:"sourcePath,omitempty"`
	Query        map[string]string `json:"query,omitempty"`
	TargetURL    string            `json:"targetUrl,omitempty"`
	ForwardMode  string            `json:"forwardMode,omitempty"`
	RuleName     string            `json:"ruleName,omitempty"`
	RuleID       string            `json:"ruleId,omitempty"`
	Status       int               `json:"status"`
	Duration     string            `json:"duration"`
	IP           string            `json:"ip"`
	UserAgent    string            `json:"userAgent"`
	RequestBody  map[string]string `json:"requestBody,omitempty"`
	ResponseSize int64             `json:"responseSize"`
	Success      bool              `json:"success"`
	IsRandom     bool              `json:"isRandom,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// RenameCollectionRequest запрос на переименование коллекции
type RenameCollectionRequest struct {
	NewName string `json:"newName"`
}

// SaveOrderRequest запрос на сохранение порядка коллекций
type SaveOrderRequest struct {
	Order []string `json:"order"`
}

// CheckConflictsRequest запрос на проверку занятых имен файлов перед загрузкой
type CheckConflictsRequest struct {
	Filenames []string `json:"filenames"`
}

// CheckConflictsResponse ответ со списком имен, которые уже заняты
type CheckConflictsResponse struct {
	Conflicts []string `json:"conflicts"`
}

// UploadedFile информация об одном загруженном файле
type UploadedFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// UploadResponse ответ на загрузку файлов
type UploadResponse struct {
	Collection string         `json:"collection"`
	Count      int            `json:"count"`
	Files      []UploadedFile `json:"files"`
	Replaced   bool           `json:"replaced"`
}
