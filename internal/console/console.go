// Пакет console — контекст консоли одной аутентифицированной сессии:
// токен, привязанный к нему клиент API, справочники, менеджер списка,
// редактор, ожидающее удаление и уведомление.
// Создаётся при входе, уничтожается при выходе или отказе авторизации.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/domain/model"
	"github.com/imilos/researchers-console/internal/listing"
	"github.com/imilos/researchers-console/internal/session"
)

// DeletedMessage — уведомление после успешного удаления записи.
const DeletedMessage = "Customer deleted successfully!"

// ErrNoPendingDelete — подтверждение удаления без открытого диалога.
var ErrNoPendingDelete = errors.New("нет записи, ожидающей удаления")

// Directory — операции удалённого API, которые использует консоль
// (реализуется apiclient.Client).
type Directory interface {
	listing.RecordLister
	listing.RecordWriter
	listing.LookupSource
	GetRecord(ctx context.Context, id int64) (*model.Researcher, error)
	DeleteRecord(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context) (io.ReadCloser, error)
	Logout(ctx context.Context) (string, error)
}

// Binder создаёт Directory, авторизующий запросы токеном сессии.
type Binder func(tokenProvider apiclient.TokenProvider) Directory

// Options — параметры консоли.
type Options struct {
	// PageSize — размер страницы списка.
	PageSize int
	// NoticeTTL — время показа уведомлений.
	NoticeTTL time.Duration
	// Now — источник времени (nil — time.Now).
	Now func() time.Time
}

// PendingDelete — запись, для которой открыт диалог подтверждения удаления.
type PendingDelete struct {
	ID   int64
	Name string
}

// Console — контекст консоли одной сессии.
type Console struct {
	id      string
	email   string
	holder  *session.Holder
	dir     Directory
	lookups *listing.Lookups
	manager *listing.Manager
	editor  *listing.Editor
	opts    Options
	logger  *slog.Logger

	mu            sync.Mutex
	initialized   bool
	lookupsLoaded bool
	notice        Notice
	pendingDelete *PendingDelete
}

// New создаёт консоль для токена token. Запросы к API авторизуются этим токеном.
func New(id, token, email string, bind Binder, opts Options, logger *slog.Logger) *Console {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger = logger.With(slog.String("console_id", id))
	holder := session.NewHolder(token)
	dir := bind(holder.Token)
	lookups := listing.NewLookups(nil, nil)
	manager := listing.NewManager(dir, lookups, opts.PageSize, logger)

	return &Console{
		id:      id,
		email:   email,
		holder:  holder,
		dir:     dir,
		lookups: lookups,
		manager: manager,
		editor:  listing.NewEditor(dir, manager, lookups, logger),
		opts:    opts,
		logger:  logger.With(slog.String("component", "console")),
	}
}

// ID возвращает идентификатор консоли в реестре.
func (c *Console) ID() string { return c.id }

// Email возвращает email пользователя сессии.
func (c *Console) Email() string { return c.email }

// Session возвращает хранилище токена сессии.
func (c *Console) Session() *session.Holder { return c.holder }

// Lookups возвращает справочники факультетов и кафедр.
func (c *Console) Lookups() *listing.Lookups { return c.lookups }

// Manager возвращает менеджер списка.
func (c *Console) Manager() *listing.Manager { return c.manager }

// Editor возвращает редактор записи.
func (c *Console) Editor() *listing.Editor { return c.editor }

// Init загружает справочники и выполняет первую перезагрузку списка.
// Список загружается один раз за жизнь консоли. Справочники, не загруженные
// из-за ошибки, запрашиваются повторно при следующем вызове.
// Ошибка загрузки справочников не прерывает загрузку списка.
func (c *Console) Init(ctx context.Context) error {
	c.mu.Lock()
	needLookups := !c.lookupsLoaded
	needList := !c.initialized
	c.initialized = true
	c.mu.Unlock()

	var lookupErr, reloadErr error
	if needLookups {
		lookupErr = c.loadLookups(ctx)
	}
	if needList {
		reloadErr = c.manager.Reload(ctx)
	}
	return errors.Join(lookupErr, reloadErr)
}

func (c *Console) loadLookups(ctx context.Context) error {
	if err := c.lookups.Load(ctx, c.dir); err != nil {
		c.logger.Warn("Не удалось загрузить справочники",
			slog.String("error", err.Error()),
		)
		return err
	}

	c.mu.Lock()
	c.lookupsLoaded = true
	c.mu.Unlock()
	return nil
}

// Edit загружает запись id в редактор: с текущей страницы, иначе из API.
func (c *Console) Edit(ctx context.Context, id int64) error {
	rec, err := c.findRecord(ctx, id)
	if err != nil {
		return err
	}
	c.editor.BeginEdit(rec)
	return nil
}

// OpenDelete открывает диалог подтверждения удаления записи id.
func (c *Console) OpenDelete(ctx context.Context, id int64) error {
	rec, err := c.findRecord(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = &PendingDelete{ID: id, Name: rec.Name}
	return nil
}

// PendingDelete возвращает запись, ожидающую подтверждения удаления.
func (c *Console) PendingDelete() (PendingDelete, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return PendingDelete{}, false
	}
	return *c.pendingDelete, true
}

// CancelDelete закрывает диалог удаления.
func (c *Console) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete удаляет запись из открытого диалога и перезагружает список.
// Диалог закрывается и при ошибке удаления.
func (c *Console) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	c.pendingDelete = nil
	c.mu.Unlock()

	if pending == nil {
		return ErrNoPendingDelete
	}

	if err := c.dir.DeleteRecord(ctx, pending.ID); err != nil {
		return fmt.Errorf("удаление записи %d: %w", pending.ID, err)
	}

	c.logger.Info("Запись удалена",
		slog.Int64("id", pending.ID),
		slog.String("name", pending.Name),
	)
	c.SetNotice(DeletedMessage, false)

	return c.manager.Reload(ctx)
}

// ExportCSV открывает поток CSV-выгрузки. Вызывающий обязан закрыть поток.
func (c *Console) ExportCSV(ctx context.Context) (io.ReadCloser, error) {
	return c.dir.ExportCSV(ctx)
}

// Logout завершает сессию в API. При успехе токен уничтожается.
func (c *Console) Logout(ctx context.Context) (string, error) {
	msg, err := c.dir.Logout(ctx)
	if err != nil {
		return "", err
	}
	c.holder.Clear()
	return msg, nil
}

// SetNotice показывает уведомление, заменяя предыдущее.
func (c *Console) SetNotice(text string, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = Notice{
		Text:      text,
		IsError:   isError,
		ExpiresAt: c.opts.Now().Add(c.opts.NoticeTTL),
	}
}

// NoticeError показывает ошибку как уведомление.
func (c *Console) NoticeError(err error) {
	c.SetNotice(apiclient.Message(err), true)
}

// Notice возвращает текущее уведомление, если оно ещё показывается.
func (c *Console) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.notice.Visible(c.opts.Now()) {
		c.notice = Notice{}
		return Notice{}, false
	}
	return c.notice, true
}

// Now возвращает текущее время консоли.
func (c *Console) Now() time.Time {
	return c.opts.Now()
}

// findRecord ищет запись на текущей странице, иначе запрашивает её у API.
func (c *Console) findRecord(ctx context.Context, id int64) (model.Researcher, error) {
	if rec, ok := c.manager.Record(id); ok {
		return rec, nil
	}
	rec, err := c.dir.GetRecord(ctx, id)
	if err != nil {
		return model.Researcher{}, fmt.Errorf("загрузка записи %d: %w", id, err)
	}
	return *rec, nil
}
