// Package web holds the browser platform tables and the class, style and
// v-model transform modules.
package web

import "strings"

func makeSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Split(list, ",") {
		set[s] = true
	}
	return set
}

var (
	htmlTags = makeSet("html,body,base,head,link,meta,style,title," +
		"address,article,aside,footer,header,h1,h2,h3,h4,h5,h6,hgroup,nav,section," +
		"div,dd,dl,dt,figcaption,figure,picture,hr,img,li,main,ol,p,pre,ul," +
		"a,b,abbr,bdi,bdo,br,cite,code,data,dfn,em,i,kbd,mark,q,rp,rt,rtc,ruby," +
		"s,samp,small,span,strong,sub,sup,time,u,var,wbr,area,audio,map,track,video," +
		"embed,object,param,source,canvas,script,noscript,del,ins," +
		"caption,col,colgroup,table,thead,tbody,td,th,tr," +
		"button,datalist,fieldset,form,input,label,legend,meter,optgroup,option," +
		"output,progress,select,textarea," +
		"details,dialog,menu,menuitem,summary," +
		"content,element,shadow,template,blockquote,iframe,tfoot")

	// svg tags that may contain children, lower-cased
	svgTags = makeSet("svg,animate,circle,clippath,cursor,defs,desc,ellipse,filter,font-face," +
		"foreignobject,g,glyph,image,line,marker,mask,missing-glyph,path,pattern," +
		"polygon,polyline,rect,switch,symbol,text,textpath,tspan,use,view")

	unaryTags = makeSet("area,base,br,col,embed,frame,hr,img,input,isindex,keygen," +
		"link,meta,param,source,track,wbr")

	acceptValueTags = makeSet("input,textarea,option,select,progress")
)

// IsHTMLTag reports built-in HTML elements.
func IsHTMLTag(tag string) bool {
	return htmlTags[strings.ToLower(tag)]
}

// IsSVGTag reports SVG elements.
func IsSVGTag(tag string) bool {
	return svgTags[strings.ToLower(tag)]
}

// IsReservedTag reports tags that can never be components.
func IsReservedTag(tag string) bool {
	return IsHTMLTag(tag) || IsSVGTag(tag)
}

// IsUnaryTag reports void elements.
func IsUnaryTag(tag string) bool {
	return unaryTags[strings.ToLower(tag)]
}

// IsPreTag reports elements whose text content is kept verbatim.
func IsPreTag(tag string) bool {
	return strings.EqualFold(tag, "pre")
}

// GetTagNamespace returns "svg" or "math" for tags that open a foreign
// namespace, and "" otherwise.
func GetTagNamespace(tag string) string {
	if IsSVGTag(tag) {
		return "svg"
	}
	if strings.EqualFold(tag, "math") {
		return "math"
	}
	return ""
}

// MustUseProp reports attributes that have to be bound as DOM properties
// rather than attributes.
func MustUseProp(tag, typ, attr string) bool {
	switch attr {
	case "value":
		return acceptValueTags[tag] && typ != "button"
	case "selected":
		return tag == "option"
	case "checked":
		return tag == "input"
	case "muted":
		return tag == "video"
	}
	return false
}
