package view

import (
	"context"
	"strings"
	"sync"
)

// resolutionCache keeps the listings scraped during one logical operation.
// It lives in memory only, attached to the operation's context.
type resolutionCache struct {
	mutex   sync.Mutex
	events  EventList
	loaded  bool
	dates   map[string]DateList
	tickets map[string]TicketList
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{
		dates:   map[string]DateList{},
		tickets: map[string]TicketList{},
	}
}

type scopeKey struct{}

// WithScope starts a resolution scope: listings scraped through the
// returned context are reused until it is dropped. Calls made outside a
// scope always scrape live. A scope already present in ctx is replaced.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, newResolutionCache())
}

func scope(ctx context.Context) *resolutionCache {
	if cache, ok := ctx.Value(scopeKey{}).(*resolutionCache); ok {
		return cache
	}
	return newResolutionCache()
}

// ensureScope keeps the scope of ctx when it has one, so lookups made by a
// single call share their listings.
func ensureScope(ctx context.Context) context.Context {
	if _, ok := ctx.Value(scopeKey{}).(*resolutionCache); ok {
		return ctx
	}
	return WithScope(ctx)
}

func ticketsKey(slug, dateUuid string) string {
	return slug + "/" + dateUuid
}

func (c *resolutionCache) getEvents() (EventList, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.events, c.loaded
}

func (c *resolutionCache) setEvents(events EventList) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = events
	c.loaded = true
}

func (c *resolutionCache) getDates(slug string) (DateList, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	dates, ok := c.dates[slug]
	return dates, ok
}

func (c *resolutionCache) setDates(slug string, dates DateList) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.dates[slug] = dates
}

func (c *resolutionCache) getTickets(slug, dateUuid string) (TicketList, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	tickets, ok := c.tickets[ticketsKey(slug, dateUuid)]
	return tickets, ok
}

func (c *resolutionCache) setTickets(slug, dateUuid string, tickets TicketList) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tickets[ticketsKey(slug, dateUuid)] = tickets
}

func (c *resolutionCache) invalidateEvent(slug string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = nil
	c.loaded = false
	delete(c.dates, slug)
	for key := range c.tickets {
		if strings.HasPrefix(key, slug+"/") {
			delete(c.tickets, key)
		}
	}
}

func (c *resolutionCache) invalidateTickets(slug, dateUuid string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.tickets, ticketsKey(slug, dateUuid))
}
