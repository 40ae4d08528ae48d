package browser

import (
	"encoding/json"
	"fmt"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/overlay"
)

// textSelector lists the elements whose rendered text is captured. Everything
// else reports an empty innerText to keep captures small.
const textSelector = `button,a,select,textarea,input,label,summary,[role],h1,h2,h3,h4,h5,h6,` +
	`main,article,.content,#content,.readme,pre,code,th,td,caption,body`

// captureScript tags every element with its preorder index, records its
// computed style, geometry and form state, serialises the markup and then
// removes the tags again. Overlay labels are dropped first so they never
// appear in a capture.
var captureScript = fmt.Sprintf(`(() => {
  const ATTR = %q, TEXT = %q, LABEL = %q;
  document.querySelectorAll('.' + LABEL).forEach(e => e.remove());
  const root = document.documentElement;
  if (!root) return null;
  const els = [root, ...root.querySelectorAll('*')];
  const nodes = [];
  els.forEach((el, i) => {
    el.setAttribute(ATTR, String(i));
    const cs = getComputedStyle(el);
    const r = el.getBoundingClientRect();
    const row = {
      i,
      style: {display: cs.display, visibility: cs.visibility, opacity: cs.opacity},
      rect: {left: r.left, top: r.top, width: r.width, height: r.height},
    };
    if (el.matches(TEXT)) row.text = el.innerText || '';
    if (typeof el.value === 'string') row.value = el.value;
    if (el.checked === true) row.checked = true;
    if (el.disabled === true) row.disabled = true;
    if (el.readOnly === true) row.readOnly = true;
    if (el.tagName === 'A' && typeof el.href === 'string') row.href = el.href;
    if (el.tagName === 'FORM' && typeof el.action === 'string') row.action = el.action;
    nodes.push(row);
  });
  const html = root.outerHTML;
  els.forEach(el => el.removeAttribute(ATTR));
  return {
    url: location.href,
    title: document.title,
    contentType: document.contentType,
    viewport: {width: window.innerWidth, height: window.innerHeight},
    html,
    nodes,
  };
})()`, dom.IndexAttr, textSelector, overlay.ClassName)

// removeLabelsScript deletes every overlay label from the document.
var removeLabelsScript = fmt.Sprintf(`document.querySelectorAll('.' + %q).forEach(e => e.remove())`, overlay.ClassName)

// drawLabelsScript returns the expression that appends labels as fixed
// position badges.
func drawLabelsScript(labels []overlay.Label) (string, error) {
	payload, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	return fmt.Sprintf(`((labels, cls) => {
  const host = document.body || document.documentElement;
  labels.forEach(l => {
    const d = document.createElement('div');
    d.className = cls + ' ' + cls + '--' + l.type;
    d.textContent = l.id;
    Object.assign(d.style, {
      position: 'fixed', left: l.pos.left + 'px', top: l.pos.top + 'px',
      zIndex: '2147483647', pointerEvents: 'none', font: 'bold 11px monospace',
      lineHeight: '14px', padding: '1px 4px', borderRadius: '3px',
      background: '#111', color: '#fff', whiteSpace: 'nowrap',
    });
    host.appendChild(d);
  });
  return labels.length;
})(%s, %q)`, payload, overlay.ClassName), nil
}
