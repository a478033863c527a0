package ui

// Localization manages manual text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// DefaultLanguage is used when a requested language is unknown
const DefaultLanguage = "en"

// Text keys for localization
const (
	KeyManualTitle     = "manual_title"
	KeyIntro           = "intro"
	KeyAddingVideos    = "adding_videos"
	KeyAddingVideosTxt = "adding_videos_text"
	KeySupportedSites  = "supported_sites"
	KeySupportedTxt    = "supported_sites_text"
	KeyCache           = "cache"
	KeyCacheTxt        = "cache_text"
	KeyQuality         = "quality"
	KeyQualityTxt      = "quality_text"
	KeyQualityReliable = "quality_reliable"
	KeyQualityMedium   = "quality_medium"
	KeyQualityHigh     = "quality_high"
	KeyShortcuts       = "shortcuts"
	KeyShortcutSpace   = "shortcut_space"
	KeyShortcutArrows  = "shortcut_arrows"
	KeyShortcutNext    = "shortcut_next"
	KeyReports         = "reports"
	KeyReportsTxt      = "reports_text"
	KeyShutdown        = "shutdown"
	KeyShutdownTxt     = "shutdown_text"
	KeyBackToPlayer    = "back_to_player"
	KeyLanguage        = "language"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown codes are ignored.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = DefaultLanguage
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[DefaultLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// Texts returns every key resolved in the current language
func (l *Localization) Texts() map[string]string {
	out := make(map[string]string, len(l.texts[DefaultLanguage]))
	for key := range l.texts[DefaultLanguage] {
		out[key] = l.GetText(key)
	}
	return out
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyManualTitle:     "Mucache Player Manual",
		KeyIntro:           "Mucache keeps a local copy of every video you play, so the playlist keeps working offline and after the source disappears.",
		KeyAddingVideos:    "Adding videos",
		KeyAddingVideosTxt: "Paste a link into the address field and press Enter. The first play downloads the video; later plays come straight from the cache. A YouTube playlist link adds every video in it.",
		KeySupportedSites:  "Supported sites",
		KeySupportedTxt:    "Twitter and X status links and Archive.org items have dedicated downloaders. Every other link goes through yt-dlp.",
		KeyCache:           "The cache",
		KeyCacheTxt:        "Videos live in the cache directory next to playlist.json. If a file is deleted or renamed the entry is queued for download again and relinked on startup when a similar file is found.",
		KeyQuality:         "Quality",
		KeyQualityTxt:      "The quality setting applies to yt-dlp downloads:",
		KeyQualityReliable: "Reliable: 360p, always works.",
		KeyQualityMedium:   "Medium: up to 720p with fallbacks.",
		KeyQualityHigh:     "High: up to 1080p, needs FFmpeg for merging.",
		KeyShortcuts:       "Keyboard shortcuts",
		KeyShortcutSpace:   "Space: play or pause",
		KeyShortcutArrows:  "Left and Right: seek 10 seconds",
		KeyShortcutNext:    "N: next video",
		KeyReports:         "Citations and evidence",
		KeyReportsTxt:      "For archived videos the player can produce academic citations in seven styles and an evidence report with file hashes and chain of custody.",
		KeyShutdown:        "Stopping the player",
		KeyShutdownTxt:     "Use the Quit button or press Ctrl+C in the terminal. The server shuts down cleanly.",
		KeyBackToPlayer:    "Back to the player",
		KeyLanguage:        "Language",
	}

	l.texts["ru"] = map[string]string{
		KeyManualTitle:     "Руководство Mucache Player",
		KeyIntro:           "Mucache сохраняет локальную копию каждого воспроизведённого видео, поэтому плейлист работает без сети и после исчезновения источника.",
		KeyAddingVideos:    "Добавление видео",
		KeyAddingVideosTxt: "Вставьте ссылку в поле адреса и нажмите Enter. Первое воспроизведение скачивает видео, последующие идут из кэша. Ссылка на плейлист YouTube добавляет все его видео.",
		KeySupportedSites:  "Поддерживаемые сайты",
		KeySupportedTxt:    "Для ссылок Twitter и X и элементов Archive.org есть отдельные загрузчики. Остальные ссылки обрабатывает yt-dlp.",
		KeyCache:           "Кэш",
		KeyCacheTxt:        "Видео хранятся в папке кэша рядом с playlist.json. Если файл удалён или переименован, запись ставится в очередь на повторную загрузку и при запуске связывается с похожим файлом.",
		KeyQuality:         "Качество",
		KeyQualityTxt:      "Настройка качества применяется к загрузкам через yt-dlp:",
		KeyQualityReliable: "Надёжное: 360p, работает всегда.",
		KeyQualityMedium:   "Среднее: до 720p с запасными вариантами.",
		KeyQualityHigh:     "Высокое: до 1080p, требуется FFmpeg.",
		KeyShortcuts:       "Горячие клавиши",
		KeyShortcutSpace:   "Пробел: пуск или пауза",
		KeyShortcutArrows:  "Влево и вправо: перемотка на 10 секунд",
		KeyShortcutNext:    "N: следующее видео",
		KeyReports:         "Цитирование и доказательства",
		KeyReportsTxt:      "Для архивных видео плеер формирует академические ссылки в семи стилях и отчёт с хешами файла и цепочкой хранения.",
		KeyShutdown:        "Остановка плеера",
		KeyShutdownTxt:     "Нажмите кнопку выхода или Ctrl+C в терминале. Сервер завершится корректно.",
		KeyBackToPlayer:    "Назад к плееру",
		KeyLanguage:        "Язык",
	}

	l.texts["pt"] = map[string]string{
		KeyManualTitle:     "Manual do Mucache Player",
		KeyIntro:           "O Mucache guarda uma cópia local de cada vídeo reproduzido, para que a lista funcione offline e depois que a fonte desaparecer.",
		KeyAddingVideos:    "Adicionando vídeos",
		KeyAddingVideosTxt: "Cole um link no campo de endereço e pressione Enter. A primeira reprodução baixa o vídeo; as seguintes vêm do cache. Um link de playlist do YouTube adiciona todos os vídeos.",
		KeySupportedSites:  "Sites suportados",
		KeySupportedTxt:    "Links de status do Twitter e X e itens do Archive.org têm downloaders próprios. Os demais links passam pelo yt-dlp.",
		KeyCache:           "O cache",
		KeyCacheTxt:        "Os vídeos ficam no diretório de cache ao lado de playlist.json. Se um arquivo for apagado ou renomeado, a entrada volta para a fila de download e é religada na inicialização quando um arquivo parecido é encontrado.",
		KeyQuality:         "Qualidade",
		KeyQualityTxt:      "A configuração de qualidade vale para downloads via yt-dlp:",
		KeyQualityReliable: "Confiável: 360p, sempre funciona.",
		KeyQualityMedium:   "Média: até 720p com alternativas.",
		KeyQualityHigh:     "Alta: até 1080p, requer FFmpeg.",
		KeyShortcuts:       "Atalhos de teclado",
		KeyShortcutSpace:   "Espaço: reproduzir ou pausar",
		KeyShortcutArrows:  "Esquerda e direita: avançar ou voltar 10 segundos",
		KeyShortcutNext:    "N: próximo vídeo",
		KeyReports:         "Citações e evidências",
		KeyReportsTxt:      "Para vídeos arquivados o player gera citações acadêmicas em sete estilos e um relatório de evidências com hashes e cadeia de custódia.",
		KeyShutdown:        "Encerrando o player",
		KeyShutdownTxt:     "Use o botão Sair ou pressione Ctrl+C no terminal. O servidor é encerrado corretamente.",
		KeyBackToPlayer:    "Voltar ao player",
		KeyLanguage:        "Idioma",
	}
}
