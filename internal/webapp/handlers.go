package webapp

import (
	"errors"
	"net/http"
	"strings"

	"taskpanel/internal/backend"
	"taskpanel/internal/guard"
	"taskpanel/internal/roles"
	"taskpanel/internal/session"
	"taskpanel/internal/task"
	"taskpanel/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups the view handlers for dependency injection.
// Keep these thin: bind/validate the form, call the backend, redirect or
// re-render. All task state lives on the backend; a redirect to a list view
// is the resync.
type Handlers struct {
	Sessions session.Binder
	Backend  *backend.Client
}

const (
	tasksPath      = "/tasks"
	adminTasksPath = "/admin/tasks"
)

type viewUser struct {
	Email   string
	Name    string
	IsAdmin bool
}

func currentViewUser(c *gin.Context) viewUser {
	email, _ := guard.Email(c.Request.Context())
	role, _ := guard.Role(c.Request.Context())

	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	return viewUser{Email: email, Name: name, IsAdmin: roles.IsAdmin(role)}
}

func (h Handlers) store(c *gin.Context) *session.Store {
	return session.BindCached(c, h.Sessions)
}

func (h Handlers) token(c *gin.Context) string {
	tok, _ := h.store(c).Token()
	return tok
}

// forceLogout clears the session and sends the user to login. Used when the
// backend rejects the token: the persisted session is no longer worth keeping.
func (h Handlers) forceLogout(c *gin.Context) {
	h.store(c).Logout()
	setFlash(c, "error", "Your session has expired. Please log in again.")
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
	c.Abort()
}

// returnPath resolves the list view a mutation should land back on. Only the
// two known list paths are accepted; anything else falls back to /tasks.
func returnPath(c *gin.Context) string {
	if c.PostForm("from") == adminTasksPath {
		return adminTasksPath
	}
	return tasksPath
}

func (h Handlers) flashAndBack(c *gin.Context, kind, message, backTo string) {
	setFlash(c, kind, message)
	c.Redirect(http.StatusSeeOther, backTo)
}

// redirectMutationError routes a failed mutation: invalid session forces a
// re-login, a stale task (gone or conflicting) redirects so the list
// converges to server truth. Returns false when the caller should keep its
// form open instead.
func (h Handlers) redirectMutationError(c *gin.Context, err error, backTo string) bool {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.forceLogout(c)
		return true
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, backend.ErrConflict):
		h.flashAndBack(c, "error", "That task changed on the server. The list was refreshed.", backTo)
		return true
	case errors.Is(err, backend.ErrForbidden):
		h.flashAndBack(c, "error", "You are not allowed to do that.", backTo)
		return true
	}
	return false
}

/* ===================== AUTH VIEWS ===================== */

func (h Handlers) LoginPage(c *gin.Context) {
	if _, ok := h.store(c).CurrentUser(); ok {
		c.Redirect(http.StatusSeeOther, guard.HomePath)
		return
	}
	h.renderLogin(c, http.StatusOK, LoginForm{}, nil, takeFlash(c))
}

func (h Handlers) renderLogin(c *gin.Context, code int, form LoginForm, errs map[string]string, flash *Flash) {
	c.HTML(code, "login.html", gin.H{
		"Form":   form,
		"Errors": errs,
		"Flash":  flash,
	})
}

func (h Handlers) Login(c *gin.Context) {
	var form LoginForm
	_ = c.ShouldBind(&form)

	if errs := ValidateForm(form); errs != nil {
		h.renderLogin(c, http.StatusUnprocessableEntity, form, errs, nil)
		return
	}

	token, err := h.Backend.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		logger.FromGin(c).Warn("login failed", "err", err)
		h.renderLogin(c, http.StatusOK, form, nil, &Flash{Kind: "error", Message: failureMessage(err, "Failed to login. Check your credentials.")})
		return
	}
	if err := h.store(c).Login(token); err != nil {
		logger.FromGin(c).Error("session write failed", "err", err)
		h.renderLogin(c, http.StatusOK, form, nil, &Flash{Kind: "error", Message: "Could not start a session. Try again."})
		return
	}

	setFlash(c, "success", "Logged in successfully!")
	c.Redirect(http.StatusSeeOther, guard.HomePath)
}

func (h Handlers) RegisterPage(c *gin.Context) {
	if _, ok := h.store(c).CurrentUser(); ok {
		c.Redirect(http.StatusSeeOther, guard.HomePath)
		return
	}
	h.renderRegister(c, http.StatusOK, RegisterForm{Role: roles.RoleUser}, nil, takeFlash(c))
}

func (h Handlers) renderRegister(c *gin.Context, code int, form RegisterForm, errs map[string]string, flash *Flash) {
	c.HTML(code, "register.html", gin.H{
		"Form":   form,
		"Errors": errs,
		"Flash":  flash,
	})
}

func (h Handlers) Register(c *gin.Context) {
	var form RegisterForm
	_ = c.ShouldBind(&form)

	if errs := ValidateForm(form); errs != nil {
		h.renderRegister(c, http.StatusUnprocessableEntity, form, errs, nil)
		return
	}

	token, err := h.Backend.Register(c.Request.Context(), form.Email, form.Password, form.Role)
	if err != nil {
		logger.FromGin(c).Warn("registration failed", "err", err)
		h.renderRegister(c, http.StatusOK, form, nil, &Flash{Kind: "error", Message: failureMessage(err, "Failed to register. Try again.")})
		return
	}
	// The backend logs new accounts straight in.
	if err := h.store(c).Login(token); err != nil {
		logger.FromGin(c).Error("session write failed", "err", err)
		h.renderRegister(c, http.StatusOK, form, nil, &Flash{Kind: "error", Message: "Could not start a session. Try again."})
		return
	}

	setFlash(c, "success", "Account created!")
	c.Redirect(http.StatusSeeOther, guard.HomePath)
}

func (h Handlers) Logout(c *gin.Context) {
	h.store(c).Logout()
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

/* ===================== TASK VIEWS ===================== */

func (h Handlers) Dashboard(c *gin.Context) {
	user := currentViewUser(c)
	flash := takeFlash(c)

	tasks, err := h.Backend.ListTasks(c.Request.Context(), h.token(c))
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Error("dashboard load failed", "err", err)
		flash = &Flash{Kind: "error", Message: "Failed to fetch tasks."}
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":  user,
		"Flash": flash,
		"Stats": task.CountStats(tasks),
	})
}

func (h Handlers) TasksPage(c *gin.Context)      { h.tasksPage(c, false) }
func (h Handlers) AdminTasksPage(c *gin.Context) { h.tasksPage(c, true) }

func (h Handlers) tasksPage(c *gin.Context, admin bool) {
	h.renderTasks(c, http.StatusOK, admin, TaskForm{}, nil, takeFlash(c))
}

// renderTasks fetches the list fresh on every render; a failed fetch surfaces
// a notification and shows an empty list rather than stale content.
func (h Handlers) renderTasks(c *gin.Context, code int, admin bool, form TaskForm, errs map[string]string, flash *Flash) {
	var (
		tasks []task.Task
		err   error
	)
	if admin {
		tasks, err = h.Backend.ListAllTasks(c.Request.Context(), h.token(c))
	} else {
		tasks, err = h.Backend.ListTasks(c.Request.Context(), h.token(c))
	}
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Error("task list load failed", "admin", admin, "err", err)
		if flash == nil {
			flash = &Flash{Kind: "error", Message: "Failed to fetch tasks."}
		}
		tasks = nil
	}

	listPath := tasksPath
	if admin {
		listPath = adminTasksPath
	}
	c.HTML(code, "tasks.html", gin.H{
		"User":     currentViewUser(c),
		"Admin":    admin,
		"Tasks":    tasks,
		"Form":     form,
		"Errors":   errs,
		"Flash":    flash,
		"Statuses": task.Statuses(),
		"ListPath": listPath,
	})
}

func (h Handlers) CreateTask(c *gin.Context) {
	backTo := returnPath(c)

	var form TaskForm
	_ = c.ShouldBind(&form)

	if errs := ValidateForm(form); errs != nil {
		h.renderTasks(c, http.StatusUnprocessableEntity, backTo == adminTasksPath, form, errs, nil)
		return
	}

	req := task.CreateRequest{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.ParsedDueDate(),
	}
	if _, err := h.Backend.CreateTask(c.Request.Context(), h.token(c), req); err != nil {
		if h.redirectMutationError(c, err, backTo) {
			return
		}
		logger.FromGin(c).Error("create task failed", "err", err)
		h.renderTasks(c, http.StatusOK, backTo == adminTasksPath, form, nil, &Flash{Kind: "error", Message: "Failed to save task."})
		return
	}

	h.flashAndBack(c, "success", "Task created successfully!", backTo)
}

func (h Handlers) UpdateTask(c *gin.Context) {
	backTo := returnPath(c)
	id := c.Param("id")

	var form TaskForm
	_ = c.ShouldBind(&form)

	if errs := ValidateForm(form); errs != nil {
		h.renderTasks(c, http.StatusUnprocessableEntity, backTo == adminTasksPath, form, errs, nil)
		return
	}

	req := task.UpdateRequest{
		Title:       &form.Title,
		Description: &form.Description,
	}
	req.SetDueDate(form.ParsedDueDate())

	if _, err := h.Backend.UpdateTask(c.Request.Context(), h.token(c), id, req); err != nil {
		if h.redirectMutationError(c, err, backTo) {
			return
		}
		logger.FromGin(c).Error("update task failed", "task_id", id, "err", err)
		h.renderTasks(c, http.StatusOK, backTo == adminTasksPath, form, nil, &Flash{Kind: "error", Message: "Failed to save task."})
		return
	}

	h.flashAndBack(c, "success", "Task updated successfully!", backTo)
}

// UpdateTaskStatus is the status-only convenience path: same backend update
// call, one field. Any status may follow any other.
func (h Handlers) UpdateTaskStatus(c *gin.Context) {
	backTo := returnPath(c)
	id := c.Param("id")

	status := task.Status(c.PostForm("status"))
	if !status.Valid() {
		h.flashAndBack(c, "error", "Unknown status.", backTo)
		return
	}

	if _, err := h.Backend.UpdateTask(c.Request.Context(), h.token(c), id, task.UpdateRequest{Status: &status}); err != nil {
		if h.redirectMutationError(c, err, backTo) {
			return
		}
		logger.FromGin(c).Error("status update failed", "task_id", id, "err", err)
		h.flashAndBack(c, "error", "Failed to update task.", backTo)
		return
	}

	h.flashAndBack(c, "success", "Task updated successfully!", backTo)
}

// DeleteTask only reaches the backend when the form carries an explicit
// confirmation; without it no network call is made.
func (h Handlers) DeleteTask(c *gin.Context) {
	backTo := returnPath(c)
	id := c.Param("id")

	if c.PostForm("confirm") != "yes" {
		h.flashAndBack(c, "error", "Deletion was not confirmed.", backTo)
		return
	}

	if err := h.Backend.DeleteTask(c.Request.Context(), h.token(c), id); err != nil {
		if h.redirectMutationError(c, err, backTo) {
			return
		}
		logger.FromGin(c).Error("delete task failed", "task_id", id, "err", err)
		h.flashAndBack(c, "error", "Failed to delete task.", backTo)
		return
	}

	h.flashAndBack(c, "success", "Task deleted.", backTo)
}

// failureMessage prefers the backend's own message when it sent one.
func failureMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
